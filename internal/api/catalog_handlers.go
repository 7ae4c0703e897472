package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wishcraft/wishcraft-server/internal/catalog"
	"github.com/wishcraft/wishcraft-server/internal/domain"
	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listOccasions",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/occasions",
		Summary:     "List occasions",
		Description: "Returns the occasions a wish can celebrate, in display order",
		Tags:        []string{"Catalog"},
	}, s.handleListOccasions)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFestivals",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/festivals",
		Summary:     "List festivals",
		Description: "Returns the festival sub-types",
		Tags:        []string{"Catalog"},
	}, s.handleListFestivals)

	huma.Register(s.api, huma.Operation{
		OperationID: "listWeddingTypes",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/wedding-types",
		Summary:     "List wedding types",
		Description: "Returns the wedding sub-types",
		Tags:        []string{"Catalog"},
	}, s.handleListWeddingTypes)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTemplates",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/templates",
		Summary:     "List templates",
		Description: "Returns templates, optionally filtered by occasion and festival",
		Tags:        []string{"Catalog"},
	}, s.handleListTemplates)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTemplate",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/templates/{id}",
		Summary:     "Get template",
		Description: "Returns a template by ID",
		Tags:        []string{"Catalog"},
	}, s.handleGetTemplate)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCustomizationOptions",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/customization",
		Summary:     "Customization options",
		Description: "Returns the color presets and font families",
		Tags:        []string{"Catalog"},
	}, s.handleGetCustomizationOptions)
}

// === DTOs ===

// OccasionsResponse lists occasions in display order.
type OccasionsResponse struct {
	Occasions []domain.OccasionInfo `json:"occasions" doc:"Occasions in display order"`
}

// OccasionsOutput wraps the occasion list for Huma.
type OccasionsOutput struct {
	Body OccasionsResponse
}

// FestivalsResponse lists festival sub-types.
type FestivalsResponse struct {
	Festivals []domain.FestivalInfo `json:"festivals" doc:"Festival sub-types"`
}

// FestivalsOutput wraps the festival list for Huma.
type FestivalsOutput struct {
	Body FestivalsResponse
}

// WeddingTypesResponse lists wedding sub-types.
type WeddingTypesResponse struct {
	WeddingTypes []domain.WeddingTypeInfo `json:"wedding_types" doc:"Wedding sub-types"`
}

// WeddingTypesOutput wraps the wedding type list for Huma.
type WeddingTypesOutput struct {
	Body WeddingTypesResponse
}

// ListTemplatesInput filters the template list.
type ListTemplatesInput struct {
	Occasion string `query:"occasion" doc:"Only templates of this occasion"`
	Festival string `query:"festival" doc:"With occasion=festival, only templates for this festival or any festival"`
}

// TemplatesResponse lists templates.
type TemplatesResponse struct {
	Templates []domain.Template `json:"templates" doc:"Templates"`
}

// TemplatesOutput wraps a template list for Huma.
type TemplatesOutput struct {
	Body TemplatesResponse
}

// GetTemplateInput identifies a template.
type GetTemplateInput struct {
	ID string `path:"id" doc:"Template ID"`
}

// TemplateOutput wraps a template for Huma.
type TemplateOutput struct {
	Body domain.Template
}

// CustomizationOptionsResponse lists the customization choices.
type CustomizationOptionsResponse struct {
	Presets      []domain.ColorPreset `json:"presets" doc:"Named color presets"`
	FontFamilies []string             `json:"font_families" doc:"Selectable font families"`
	Layouts      []domain.PhotoLayout `json:"layouts" doc:"Photo layouts"`
	Defaults     domain.Customization `json:"defaults" doc:"Default customization"`
}

// CustomizationOptionsOutput wraps the customization options for Huma.
type CustomizationOptionsOutput struct {
	Body CustomizationOptionsResponse
}

// === Handlers ===

func (s *Server) handleListOccasions(_ context.Context, _ *struct{}) (*OccasionsOutput, error) {
	return &OccasionsOutput{Body: OccasionsResponse{Occasions: catalog.ListOccasions()}}, nil
}

func (s *Server) handleListFestivals(_ context.Context, _ *struct{}) (*FestivalsOutput, error) {
	return &FestivalsOutput{Body: FestivalsResponse{Festivals: catalog.ListFestivals()}}, nil
}

func (s *Server) handleListWeddingTypes(_ context.Context, _ *struct{}) (*WeddingTypesOutput, error) {
	return &WeddingTypesOutput{Body: WeddingTypesResponse{WeddingTypes: catalog.ListWeddingTypes()}}, nil
}

func (s *Server) handleListTemplates(_ context.Context, input *ListTemplatesInput) (*TemplatesOutput, error) {
	if input.Occasion == "" {
		return &TemplatesOutput{Body: TemplatesResponse{Templates: catalog.ListTemplates()}}, nil
	}

	occasion := domain.Occasion(input.Occasion)
	if !occasion.Valid() {
		return nil, toAPIError(domainerrors.Validationf("unknown occasion %q", input.Occasion))
	}
	festival := domain.FestivalType(input.Festival)
	if festival != "" && !festival.Valid() {
		return nil, toAPIError(domainerrors.Validationf("unknown festival %q", input.Festival))
	}

	return &TemplatesOutput{Body: TemplatesResponse{Templates: catalog.TemplatesFor(occasion, festival)}}, nil
}

func (s *Server) handleGetTemplate(_ context.Context, input *GetTemplateInput) (*TemplateOutput, error) {
	t, ok := catalog.TemplateByID(input.ID)
	if !ok {
		return nil, toAPIError(domainerrors.NotFoundf("template %q not found", input.ID))
	}
	return &TemplateOutput{Body: t}, nil
}

func (s *Server) handleGetCustomizationOptions(_ context.Context, _ *struct{}) (*CustomizationOptionsOutput, error) {
	return &CustomizationOptionsOutput{
		Body: CustomizationOptionsResponse{
			Presets:      catalog.ColorPresets(),
			FontFamilies: catalog.FontFamilies(),
			Layouts:      []domain.PhotoLayout{domain.LayoutGrid, domain.LayoutSlider},
			Defaults:     domain.DefaultCustomization(""),
		},
	}, nil
}
