package client

import (
	"go.uber.org/zap"
)

// zapLogger 基于 zap 的 Logger 实现
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger 将 zap.Logger 适配为 Logger（键值对参数）
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{s: l.Sugar()}
}

// NopLogger 丢弃所有日志
func NopLogger() Logger {
	return NewZapLogger(zap.NewNop())
}

func (l *zapLogger) Debug(msg string, args ...interface{}) { l.s.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...interface{})  { l.s.Infow(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...interface{})  { l.s.Warnw(msg, args...) }
func (l *zapLogger) Error(msg string, args ...interface{}) { l.s.Errorw(msg, args...) }
