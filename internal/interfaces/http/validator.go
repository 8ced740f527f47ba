package http

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// requestValidator devuelve el validador compartido. Los nombres de campo en los errores
// son los del tag json para que el cliente los reconozca.
func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "query"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
	return validate
}

// bindBody parsea el cuerpo JSON y lo valida.
func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return requestValidator().Struct(out)
}

// bindQuery parsea los query params, aplica la paginación por defecto y los valida.
func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return errInvalidQuery
	}
	if p, ok := out.(interface{ DefaultPage() }); ok {
		p.DefaultPage()
	}
	return requestValidator().Struct(out)
}
