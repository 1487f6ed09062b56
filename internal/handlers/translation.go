package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sqlizer/sqlizer/internal/schema"
	"github.com/sqlizer/sqlizer/internal/sqlgen"
	"github.com/sqlizer/sqlizer/internal/types"
)

// TranslationHandler projects schema documents to SQL.
type TranslationHandler struct{}

// TranslateJSONToSQL handles POST /translation/translateJsonToSql
// @Summary Render a schema document as a SQL DDL script
// @Tags Translation
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /translation/translateJsonToSql [post]
func (h *TranslationHandler) TranslateJSONToSQL(c *fiber.Ctx) error {
	doc, err := schema.Parse(c.Body())
	if err != nil {
		return renderError(c, err, "translateJsonToSql")
	}
	if doc.DBName == "" {
		return renderError(c, types.Validation("dbName is required"), "translateJsonToSql")
	}

	return c.JSON(fiber.Map{"sql": sqlgen.Translate(doc)})
}
