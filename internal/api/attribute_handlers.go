package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/service"
)

// registerAttributeRoutes mounts list, get, replace, update and delete for
// one attribute kind under base. Tags and ingredients share these handlers.
func (s *Server) registerAttributeRoutes(svc *service.AttributeService, base, group string) {
	one := cases.Title(language.English).String(svc.Kind().Label())
	many := one + "s"
	item := base + "/{id}/"

	huma.Register(s.api, huma.Operation{
		OperationID: "list" + many,
		Method:      http.MethodGet,
		Path:        base + "/",
		Summary:     "List " + svc.Kind().Label() + "s",
		Description: "Returns the caller's entries, name descending. assigned_only=1 keeps only entries linked to a recipe.",
		Tags:        []string{group},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *ListAttributesInput) (*ListAttributesOutput, error) {
		userID, err := GetUserID(ctx)
		if err != nil {
			return nil, err
		}

		attrs, err := svc.List(ctx, userID, input.AssignedOnly != 0)
		if err != nil {
			return nil, err
		}
		return &ListAttributesOutput{Body: mapAttributes(attrs)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get" + one,
		Method:      http.MethodGet,
		Path:        item,
		Summary:     "Get " + svc.Kind().Label(),
		Tags:        []string{group},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *AttributeIDInput) (*AttributeOutput, error) {
		userID, err := GetUserID(ctx)
		if err != nil {
			return nil, err
		}
		id, err := parsePathID(input.ID, svc.Kind().Label())
		if err != nil {
			return nil, err
		}

		attr, err := svc.Get(ctx, userID, id)
		return attributeOutput(attr, err)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "replace" + one,
		Method:      http.MethodPut,
		Path:        item,
		Summary:     "Replace " + svc.Kind().Label(),
		Description: "Full update; name is required.",
		Tags:        []string{group},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *WriteAttributeInput) (*AttributeOutput, error) {
		userID, err := GetUserID(ctx)
		if err != nil {
			return nil, err
		}
		id, err := parsePathID(input.ID, svc.Kind().Label())
		if err != nil {
			return nil, err
		}

		attr, err := svc.Replace(ctx, userID, id, service.AttributeUpdate{Name: input.Body.Name})
		return attributeOutput(attr, err)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update" + one,
		Method:      http.MethodPatch,
		Path:        item,
		Summary:     "Update " + svc.Kind().Label(),
		Tags:        []string{group},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, input *WriteAttributeInput) (*AttributeOutput, error) {
		userID, err := GetUserID(ctx)
		if err != nil {
			return nil, err
		}
		id, err := parsePathID(input.ID, svc.Kind().Label())
		if err != nil {
			return nil, err
		}

		attr, err := svc.Update(ctx, userID, id, service.AttributeUpdate{Name: input.Body.Name})
		return attributeOutput(attr, err)
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete" + one,
		Method:        http.MethodDelete,
		Path:          item,
		Summary:       "Delete " + svc.Kind().Label(),
		Description:   "Deletes the entry and unlinks it from every recipe.",
		Tags:          []string{group},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *AttributeIDInput) (*struct{}, error) {
		userID, err := GetUserID(ctx)
		if err != nil {
			return nil, err
		}
		id, err := parsePathID(input.ID, svc.Kind().Label())
		if err != nil {
			return nil, err
		}

		return nil, svc.Delete(ctx, userID, id)
	})
}

// === DTOs ===

// ListAttributesInput contains parameters for listing tags or ingredients.
type ListAttributesInput struct {
	AssignedOnly int `query:"assigned_only" doc:"Nonzero keeps only entries linked to at least one recipe"`
}

// ListAttributesOutput wraps the attribute list for Huma.
type ListAttributesOutput struct {
	Body []AttributeResponse
}

// AttributeIDInput identifies a tag or ingredient.
type AttributeIDInput struct {
	ID string `path:"id" doc:"Attribute ID"`
}

// AttributeBody is the request body for renaming a tag or ingredient.
type AttributeBody struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name *string  `json:"name,omitempty" doc:"New name"`
}

// WriteAttributeInput wraps PUT and PATCH requests for Huma.
type WriteAttributeInput struct {
	ID   string `path:"id" doc:"Attribute ID"`
	Body AttributeBody
}

// AttributeOutput wraps a single attribute for Huma.
type AttributeOutput struct {
	Body AttributeResponse
}

func attributeOutput(attr *domain.Attribute, err error) (*AttributeOutput, error) {
	if err != nil {
		return nil, err
	}
	return &AttributeOutput{Body: AttributeResponse{ID: attr.ID, Name: attr.Name}}, nil
}
