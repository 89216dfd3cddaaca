package utils

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchConfig 批量操作配置
type BatchConfig struct {
	// Concurrency 并发数量，<= 0 表示不限制
	Concurrency int
	// OnProgress 进度回调函数
	OnProgress func(progress BatchProgress)
}

// BatchProgress 批量操作进度
type BatchProgress struct {
	// Completed 已完成数量
	Completed int
	// Total 总数量
	Total int
	// Success 成功数量
	Success int
	// Failed 失败数量
	Failed int
}

// DefaultBatchConfig 返回默认批量配置
func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{
		Concurrency: 8,
	}
}

// BatchQueryResult 批量查询结果
type BatchQueryResult[R any] struct {
	// Results 与输入下标对齐的结果，失败项为零值
	Results []R
	// Errors 失败的项目，按下标排序
	Errors []BatchError
	// Total 总数量
	Total int
	// Success 成功数量
	Success int
	// Failed 失败数量
	Failed int
}

// Succeeded 判断指定下标的项目是否成功
func (r *BatchQueryResult[R]) Succeeded(index int) bool {
	for _, e := range r.Errors {
		if e.Index == index {
			return false
		}
	}
	return index >= 0 && index < r.Total
}

// BatchError 批量操作错误
type BatchError struct {
	// Index 项目索引
	Index int
	// Error 错误信息
	Error error
}

// BatchQuery 批量查询
//
// 对一组输入并发调用查询函数。单个项目失败不会取消其他项目，
// 每个项目只写入自己的下标。
//
// 示例：
//
//	result, err := BatchQuery(ctx, actions, func(ctx context.Context, a rights.Action, i int) (int64, error) {
//	    return ops[i].Estimate(ctx)
//	}, DefaultBatchConfig())
func BatchQuery[T any, R any](
	ctx context.Context,
	items []T,
	queryFn func(ctx context.Context, item T, index int) (R, error),
	config *BatchConfig,
) (*BatchQueryResult[R], error) {
	if config == nil {
		config = DefaultBatchConfig()
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))

	var mu sync.Mutex
	progress := BatchProgress{Total: len(items)}

	g := new(errgroup.Group)
	if config.Concurrency > 0 {
		g.SetLimit(config.Concurrency)
	}

	for i, item := range items {
		g.Go(func() error {
			result, err := queryFn(ctx, item, i)
			if err != nil {
				errs[i] = err
			} else {
				results[i] = result
			}

			mu.Lock()
			defer mu.Unlock()
			progress.Completed++
			if err != nil {
				progress.Failed++
			} else {
				progress.Success++
			}
			if config.OnProgress != nil {
				config.OnProgress(progress)
			}
			// 单项失败不中断批次
			return nil
		})
	}
	_ = g.Wait()

	batchErrors := make([]BatchError, 0)
	for i, err := range errs {
		if err != nil {
			batchErrors = append(batchErrors, BatchError{Index: i, Error: err})
		}
	}
	sort.Slice(batchErrors, func(a, b int) bool { return batchErrors[a].Index < batchErrors[b].Index })

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch query canceled: %w", err)
	}

	return &BatchQueryResult[R]{
		Results: results,
		Errors:  batchErrors,
		Total:   len(items),
		Success: progress.Success,
		Failed:  progress.Failed,
	}, nil
}

// ParallelExecute 并行执行多个操作
//
// 任一操作失败时取消其余操作并返回第一个错误。
//
// 示例：
//
//	flags, err := ParallelExecute(ctx, calls, func(ctx context.Context, c flagCall) (bool, error) {
//	    return reader.callBool(ctx, c)
//	}, 4)
func ParallelExecute[T any, R any](
	ctx context.Context,
	items []T,
	executeFn func(ctx context.Context, item T) (R, error),
	concurrency int,
) ([]R, error) {
	results := make([]R, len(items))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, item := range items {
		g.Go(func() error {
			result, err := executeFn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parallel execute failed: %w", err)
	}
	return results, nil
}
