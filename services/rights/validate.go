package rights

import (
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rightshare/client-sdk-go/utils"
)

// ErrInvalidForm 表单校验失败
var ErrInvalidForm = errors.New("invalid form")

// 校验错误信息
const (
	msgRequired       = "This field is required"
	msgInvalidDate    = "Invalid date, expected YYYY-MM-DD"
	msgInvalidTime    = "Invalid time, expected HH:MM"
	msgPastExpiry     = "Expiry must be in the future"
	msgPositiveInt    = "Must be a positive integer"
	msgInvalidAddress = "Invalid address"
	msgSameOwner      = "Cannot transfer to the current owner"
	msgInvalidURL     = "Invalid URL"
)

// FieldErrors 按字段名索引的校验错误
type FieldErrors map[string]string

// Error 实现 error
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Is 使 errors.Is(err, ErrInvalidForm) 成立
func (e FieldErrors) Is(target error) bool {
	return target == ErrInvalidForm
}

// Validator 表单校验器
//
// 纯函数，不发起任何网络调用。
type Validator struct {
	// Now 当前时间，用于判断到期时间是否在未来
	Now func() time.Time
}

// NewValidator 创建使用系统时钟的校验器
func NewValidator() *Validator {
	return &Validator{Now: time.Now}
}

// Validate 使用系统时钟校验表单
func Validate(form Form, fields ...string) (bool, FieldErrors) {
	return NewValidator().Validate(form, fields...)
}

// Validate 校验指定字段，未知字段忽略
func (v *Validator) Validate(form Form, fields ...string) (bool, FieldErrors) {
	errs := FieldErrors{}
	for _, field := range fields {
		value, ok := form.FieldValue(field)
		if !ok {
			continue
		}
		if msg := v.check(form, field, strings.TrimSpace(value)); msg != "" {
			errs[field] = msg
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

func (v *Validator) check(form Form, field, value string) string {
	switch field {
	case FieldExpiryDate:
		if value == "" {
			return msgRequired
		}
		date, err := time.ParseInLocation(dateLayout, value, time.UTC)
		if err != nil {
			return msgInvalidDate
		}
		// 当天 24:00 前都可能合法，精确判断交给 expiryTime
		if !date.Add(24 * time.Hour).After(v.now()) {
			return msgPastExpiry
		}

	case FieldExpiryTime:
		if value == "" {
			return msgRequired
		}
		if _, err := time.Parse(timeLayout, value); err != nil {
			return msgInvalidTime
		}
		date, _ := form.FieldValue(FieldExpiryDate)
		if expiry, err := parseExpiry(date, value); err == nil && !expiry.After(v.now()) {
			return msgPastExpiry
		}

	case FieldMaxISupply:
		if exclusive, _ := form.FieldValue(FieldIsExclusive); exclusive == "true" {
			return ""
		}
		if value == "" {
			return msgRequired
		}
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil || n == 0 {
			return msgPositiveInt
		}

	case FieldTo:
		if value == "" {
			return msgRequired
		}
		if _, err := utils.ParseAddress(value); err != nil {
			return msgInvalidAddress
		}
		if owner, _ := form.FieldValue(FieldOwner); utils.SameAddress(value, owner) {
			return msgSameOwner
		}

	case FieldPurpose:
		if value == "" {
			return msgRequired
		}

	case FieldImageURL:
		if value == "" {
			return msgRequired
		}
		if !isHTTPURL(value) {
			return msgInvalidURL
		}

	case FieldTermsURL:
		if value != "" && !isHTTPURL(value) {
			return msgInvalidURL
		}
	}
	return ""
}

func (v *Validator) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
