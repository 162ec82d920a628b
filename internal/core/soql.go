package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"orgtasks/internal/types"
)

// stringSoapTypes are the soap types whose query literals are quoted.
// All other types (numeric, boolean, date) embed the caller-supplied
// literal as-is.
var stringSoapTypes = map[string]struct{}{
	"xsd:string":  {},
	"tns:ID":      {},
	"urn:address": {},
}

// BuildUserQuery turns ordered field=value filters into a conjunctive
// SOQL query over User. Field names are matched case-sensitively
// against the described schema and must be filterable.
func BuildUserQuery(ctx context.Context, fields []types.FieldMetadata, filters []types.FieldFilter) (string, error) {
	if len(filters) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one user filter is required")
	}

	byName := make(map[string]types.FieldMetadata, len(fields))
	for _, field := range fields {
		byName[field.Name] = field
	}

	predicates := make([]string, 0, len(filters))
	for _, filter := range filters {
		assert.NotEmpty(ctx, filter.Field, "filter field must be set")
		field, ok := byName[filter.Field]
		if !ok {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("User field %q referenced in filters is not found; fields are case-sensitive", filter.Field))
		}
		if !field.Filterable {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("User field %q referenced in filters must be filterable", filter.Field))
		}
		if _, quoted := stringSoapTypes[field.SoapType]; quoted {
			predicates = append(predicates, fmt.Sprintf("%s = '%s'", filter.Field, filter.Value))
		} else {
			predicates = append(predicates, fmt.Sprintf("%s = %s", filter.Field, filter.Value))
		}
	}

	query := "SELECT Id FROM User WHERE " + strings.Join(predicates, " AND ")
	log.Ctx(ctx).Debug().Str("query", query).Msg("user query built")
	return query, nil
}
