// Package validate 封装 go-playground/validator，客户端发请求前与参考后端绑定参数时共用同一套规则和翻译
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"

	"kama_chat_client/pkg/errorx"
)

var (
	mu       sync.RWMutex
	engine   *validator.Validate
	trans    ut.Translator
	initOnce sync.Once
)

// Init 初始化校验器和翻译器，locale 为 "zh" 或 "en"
// DTO 上写的是 gin 的 binding 标签，这里让独立校验器读同一个标签
func Init(locale string) error {
	t, err := newTranslator(locale)
	if err != nil {
		return err
	}
	v := validator.New()
	v.SetTagName("binding")
	if err := register(v, t, locale); err != nil {
		return err
	}
	mu.Lock()
	engine, trans = v, t
	mu.Unlock()
	return nil
}

// InitGin 把 gin 的默认校验引擎也接上同样的 json 字段名和翻译器
// 之后 Translate 可以直接翻译 ShouldBind 返回的错误
func InitGin(locale string) error {
	if err := Init(locale); err != nil {
		return err
	}
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	_, t := current()
	return register(v, t, locale)
}

func newTranslator(locale string) (ut.Translator, error) {
	enT := en.New()
	uni := ut.New(enT, zh.New(), enT)
	t, ok := uni.GetTranslator(locale)
	if !ok {
		return nil, fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}
	return t, nil
}

func register(v *validator.Validate, t ut.Translator, locale string) error {
	// 报错里用 json 字段名（fullName），而不是 Go 字段名（FullName）
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	switch locale {
	case "zh":
		return zh_translations.RegisterDefaultTranslations(v, t)
	default:
		return en_translations.RegisterDefaultTranslations(v, t)
	}
}

func current() (*validator.Validate, ut.Translator) {
	mu.RLock()
	v, t := engine, trans
	mu.RUnlock()
	if v != nil {
		return v, t
	}
	// 未显式初始化时退回英文
	initOnce.Do(func() { _ = Init("en") })
	mu.RLock()
	defer mu.RUnlock()
	return engine, trans
}

// Struct 校验结构体，失败时返回 CodeInvalidParam 的 CodeError，消息为翻译后的字段提示
func Struct(obj any) error {
	v, t := current()
	err := v.Struct(obj)
	if err == nil {
		return nil
	}
	return Translate(err, t)
}

// Translate 把 validator 的错误转成 errorx.CodeError
// t 为 nil 时使用当前全局翻译器
func Translate(err error, t ut.Translator) error {
	if t == nil {
		_, t = current()
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errorx.Wrap(err, errorx.CodeInvalidParam, errorx.ErrInvalidParam.Msg)
	}
	fields := RemoveTopStruct(verrs.Translate(t))
	msgs := make([]string, 0, len(fields))
	for _, m := range fields {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return errorx.Wrap(err, errorx.CodeInvalidParam, strings.Join(msgs, "; "))
}

// RemoveTopStruct 去掉字段名里的结构体前缀，"SignupRequest.email" -> "email"
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}
