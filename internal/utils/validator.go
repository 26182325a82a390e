package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/spf13/viper"
)

var trans ut.Translator

// InitTrans 初始化翻译器
func InitTrans() {
	lang := viper.GetString("server.lang")
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})

	enT := en.New()
	uni := ut.New(enT, enT)

	trans, ok = uni.GetTranslator(lang)
	if !ok {
		trans, _ = uni.GetTranslator("en")
	}

	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(fmt.Sprintf("register translations: %v", err))
	}
}

func ParseToValidationError(err error) any {
	if v, ok := err.(validator.ValidationErrors); ok && trans != nil {
		return v.Translate(trans)
	}
	return "잘못된 요청입니다"
}
