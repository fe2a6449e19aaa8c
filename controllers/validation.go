package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/vnkhanh/e-storybook-backend/apperror"
)

var (
	transOnce sync.Once
	trans     ut.Translator
)

// setupValidator đăng ký bản dịch tiếng Anh và tên field theo json tag cho validator của gin.
// Phải chạy trước lần bind đầu tiên vì validator cache struct.
func setupValidator() ut.Translator {
	transOnce.Do(func() {
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = enTranslations.RegisterDefaultTranslations(v, trans)
	})
	return trans
}

// bindError chuyển lỗi bind của gin thành lỗi 400 với thông báo dễ đọc
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		t := setupValidator()
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fe.Translate(t))
		}
		return apperror.ValidationWrap(strings.Join(msgs, "; "), err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperror.ValidationWrap("Request body is required", err)
	case errors.As(err, &syntaxErr):
		return apperror.ValidationWrap("Invalid JSON body", err)
	case errors.As(err, &typeErr):
		return apperror.ValidationWrap("Invalid value for field "+typeErr.Field, err)
	}
	return apperror.ValidationWrap("Invalid request body", err)
}
