package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wishcraft/wishcraft-server/internal/domain"
	"github.com/wishcraft/wishcraft-server/internal/share"
	"github.com/wishcraft/wishcraft-server/internal/wizard"
)

func (s *Server) registerWizardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createWizard",
		Method:        http.MethodPost,
		Path:          "/api/v1/wizard",
		Summary:       "Start wizard",
		Description:   "Starts a wizard session on the occasion step",
		Tags:          []string{"Wizard"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateWizard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWizard",
		Method:      http.MethodGet,
		Path:        "/api/v1/wizard/{id}",
		Summary:     "Get wizard state",
		Description: "Returns everything needed to render the current wizard screen",
		Tags:        []string{"Wizard"},
	}, s.handleGetWizard)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectOccasion",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizard/{id}/occasion",
		Summary:     "Select occasion",
		Description: "Selects the occasion. Changing it clears the festival or wedding type",
		Tags:        []string{"Wizard"},
	}, s.handleSelectOccasion)

	huma.Register(s.api, huma.Operation{
		OperationID: "setRecipient",
		Method:      http.MethodPut,
		Path:        "/api/v1/wizard/{id}/recipient",
		Summary:     "Set recipient",
		Description: "Sets the recipient name and the festival or wedding type",
		Tags:        []string{"Wizard"},
	}, s.handleSetRecipient)

	huma.Register(s.api, huma.Operation{
		OperationID: "setNote",
		Method:      http.MethodPut,
		Path:        "/api/v1/wizard/{id}/note",
		Summary:     "Set personal note",
		Description: "Sets the optional personal note",
		Tags:        []string{"Wizard"},
	}, s.handleSetNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "removePhoto",
		Method:      http.MethodDelete,
		Path:        "/api/v1/wizard/{id}/photos/{index}",
		Summary:     "Remove photo",
		Description: "Removes the photo at index; later photos shift down",
		Tags:        []string{"Wizard"},
	}, s.handleRemovePhoto)

	huma.Register(s.api, huma.Operation{
		OperationID: "continueWizard",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizard/{id}/continue",
		Summary:     "Continue",
		Description: "Performs the primary action of the current step",
		Tags:        []string{"Wizard"},
	}, s.handleContinue)

	huma.Register(s.api, huma.Operation{
		OperationID: "backWizard",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizard/{id}/back",
		Summary:     "Back",
		Description: "Returns to the previous screen, keeping the draft",
		Tags:        []string{"Wizard"},
	}, s.handleBack)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectTemplate",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizard/{id}/template",
		Summary:     "Select template",
		Description: "Selects a template and opens greeting selection",
		Tags:        []string{"Wizard"},
	}, s.handleSelectTemplate)

	huma.Register(s.api, huma.Operation{
		OperationID: "regenerateGreetings",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizard/{id}/greetings/regenerate",
		Summary:     "Regenerate greetings",
		Description: "Generates a fresh set of variations. A superseded request fails with STALE",
		Tags:        []string{"Wizard"},
	}, s.handleRegenerateGreetings)

	huma.Register(s.api, huma.Operation{
		OperationID: "setGreeting",
		Method:      http.MethodPut,
		Path:        "/api/v1/wizard/{id}/greeting",
		Summary:     "Choose greeting",
		Description: "Selects a variation or writes a custom greeting",
		Tags:        []string{"Wizard"},
	}, s.handleSetGreeting)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmGreeting",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizard/{id}/greeting/confirm",
		Summary:     "Confirm greeting",
		Description: "Adopts the chosen greeting and opens customization",
		Tags:        []string{"Wizard"},
	}, s.handleConfirmGreeting)

	huma.Register(s.api, huma.Operation{
		OperationID: "customizeWish",
		Method:      http.MethodPatch,
		Path:        "/api/v1/wizard/{id}/customization",
		Summary:     "Customize",
		Description: "Applies a color preset and changes individual customization fields",
		Tags:        []string{"Wizard"},
	}, s.handleCustomize)

	huma.Register(s.api, huma.Operation{
		OperationID: "previewWish",
		Method:      http.MethodGet,
		Path:        "/api/v1/wizard/{id}/preview",
		Summary:     "Preview",
		Description: "Projects the draft onto a wish page",
		Tags:        []string{"Wizard"},
	}, s.handlePreview)

	huma.Register(s.api, huma.Operation{
		OperationID:   "applyWish",
		Method:        http.MethodPost,
		Path:          "/api/v1/wizard/{id}/apply",
		Summary:       "Create wish",
		Description:   "Persists the draft as a wish. Succeeds at most once per session",
		Tags:          []string{"Wizard"},
		DefaultStatus: http.StatusCreated,
	}, s.handleApply)
}

// === DTOs ===

// WizardInput identifies a wizard session.
type WizardInput struct {
	ID string `path:"id" doc:"Wizard session ID"`
}

// WizardStateOutput wraps the wizard state for Huma.
type WizardStateOutput struct {
	Body wizard.State
}

// SelectOccasionRequest is the request body for selecting an occasion.
type SelectOccasionRequest struct {
	Occasion domain.Occasion `json:"occasion" enum:"birthday,anniversary,wedding,festival" doc:"Occasion"`
}

// SelectOccasionInput wraps the select occasion request for Huma.
type SelectOccasionInput struct {
	ID   string `path:"id" doc:"Wizard session ID"`
	Body SelectOccasionRequest
}

// SetRecipientRequest is the request body for the recipient step.
// Omitted fields are left unchanged; an empty type clears it.
type SetRecipientRequest struct {
	RecipientName *string             `json:"recipient_name,omitempty" maxLength:"200" doc:"Recipient name"`
	FestivalType  *domain.FestivalType `json:"festival_type,omitempty" doc:"Festival type, festival wishes only"`
	WeddingType   *domain.WeddingType  `json:"wedding_type,omitempty" doc:"Wedding type, wedding wishes only"`
}

// SetRecipientInput wraps the set recipient request for Huma.
type SetRecipientInput struct {
	ID   string `path:"id" doc:"Wizard session ID"`
	Body SetRecipientRequest
}

// SetNoteRequest is the request body for the note step.
type SetNoteRequest struct {
	PersonalNote string `json:"personal_note" maxLength:"2000" doc:"Personal note, may be empty"`
}

// SetNoteInput wraps the set note request for Huma.
type SetNoteInput struct {
	ID   string `path:"id" doc:"Wizard session ID"`
	Body SetNoteRequest
}

// RemovePhotoInput identifies a photo slot.
type RemovePhotoInput struct {
	ID    string `path:"id" doc:"Wizard session ID"`
	Index int    `path:"index" minimum:"0" doc:"Photo index"`
}

// SelectTemplateRequest is the request body for selecting a template.
type SelectTemplateRequest struct {
	TemplateID string `json:"template_id" minLength:"1" doc:"Template ID"`
}

// SelectTemplateInput wraps the select template request for Huma.
type SelectTemplateInput struct {
	ID   string `path:"id" doc:"Wizard session ID"`
	Body SelectTemplateRequest
}

// GreetingsOutput wraps the greeting screen state for Huma.
type GreetingsOutput struct {
	Body wizard.Greetings
}

// SetGreetingRequest selects a variation or edits the custom greeting.
type SetGreetingRequest struct {
	VariationID *string `json:"variation_id,omitempty" doc:"Variation to select"`
	CustomText  *string `json:"custom_text,omitempty" maxLength:"4000" doc:"Custom greeting text; setting it switches to the custom greeting"`
	UseCustom   *bool   `json:"use_custom,omitempty" doc:"Switch between the custom greeting and the selected variation"`
}

// SetGreetingInput wraps the set greeting request for Huma.
type SetGreetingInput struct {
	ID   string `path:"id" doc:"Wizard session ID"`
	Body SetGreetingRequest
}

// CustomizeRequest applies a preset, then the individual fields.
type CustomizeRequest struct {
	Preset string `json:"preset,omitempty" doc:"Color preset name"`
	wizard.CustomizationPatch
}

// CustomizeInput wraps the customize request for Huma.
type CustomizeInput struct {
	ID   string `path:"id" doc:"Wizard session ID"`
	Body CustomizeRequest
}

// CustomizationOutput wraps the customization for Huma.
type CustomizationOutput struct {
	Body domain.Customization
}

// PreviewOutput wraps the wish preview for Huma.
type PreviewOutput struct {
	Body wizard.Preview
}

// ApplyResponse contains the created wish location.
type ApplyResponse struct {
	Slug string `json:"slug" doc:"Slug of the new wish"`
	URL  string `json:"url" doc:"Shareable wish URL"`
}

// ApplyOutput wraps the apply response for Huma.
type ApplyOutput struct {
	Body ApplyResponse
}

// === Handlers ===

func (s *Server) wizard(ctx context.Context, id string) (*wizard.Wizard, error) {
	w, err := s.services.Sessions.Get(ctx, id)
	if err != nil {
		return nil, toAPIError(err)
	}
	return w, nil
}

// stateOutput returns the state of w, or err when the event failed.
func stateOutput(w *wizard.Wizard, err error) (*WizardStateOutput, error) {
	if err != nil {
		return nil, toAPIError(err)
	}
	return &WizardStateOutput{Body: w.State()}, nil
}

func (s *Server) handleCreateWizard(ctx context.Context, _ *struct{}) (*WizardStateOutput, error) {
	w, err := s.services.Sessions.Create(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &WizardStateOutput{Body: w.State()}, nil
}

func (s *Server) handleGetWizard(ctx context.Context, input *WizardInput) (*WizardStateOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return stateOutput(w, nil)
}

func (s *Server) handleSelectOccasion(ctx context.Context, input *SelectOccasionInput) (*WizardStateOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return stateOutput(w, w.SelectOccasion(input.Body.Occasion))
}

func (s *Server) handleSetRecipient(ctx context.Context, input *SetRecipientInput) (*WizardStateOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	body := input.Body
	if body.RecipientName != nil {
		if err := w.SetRecipientName(*body.RecipientName); err != nil {
			return nil, toAPIError(err)
		}
	}
	if body.FestivalType != nil {
		if err := w.SelectFestival(*body.FestivalType); err != nil {
			return nil, toAPIError(err)
		}
	}
	if body.WeddingType != nil {
		if err := w.SelectWeddingType(*body.WeddingType); err != nil {
			return nil, toAPIError(err)
		}
	}
	return stateOutput(w, nil)
}

func (s *Server) handleSetNote(ctx context.Context, input *SetNoteInput) (*WizardStateOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return stateOutput(w, w.SetNote(input.Body.PersonalNote))
}

func (s *Server) handleRemovePhoto(ctx context.Context, input *RemovePhotoInput) (*WizardStateOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return stateOutput(w, w.RemovePhoto(input.Index))
}

func (s *Server) handleContinue(ctx context.Context, input *WizardInput) (*WizardStateOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	_, err = w.Continue()
	return stateOutput(w, err)
}

func (s *Server) handleBack(ctx context.Context, input *WizardInput) (*WizardStateOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	_, err = w.Back()
	return stateOutput(w, err)
}

func (s *Server) handleSelectTemplate(ctx context.Context, input *SelectTemplateInput) (*WizardStateOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if w.Step() == wizard.StepReview {
		if _, err := w.ChooseTemplate(); err != nil {
			return nil, toAPIError(err)
		}
	}
	_, err = w.SelectTemplate(input.Body.TemplateID)
	return stateOutput(w, err)
}

// handleRegenerateGreetings runs the generation inside the request so the
// caller learns whether its own request won.
func (s *Server) handleRegenerateGreetings(ctx context.Context, input *WizardInput) (*GreetingsOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := w.RequestGreetings(ctx); err != nil {
		return nil, toAPIError(err)
	}

	st := w.State()
	if st.Greetings == nil {
		return &GreetingsOutput{}, nil
	}
	return &GreetingsOutput{Body: *st.Greetings}, nil
}

func (s *Server) handleSetGreeting(ctx context.Context, input *SetGreetingInput) (*WizardStateOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	body := input.Body
	if body.VariationID != nil {
		if err := w.SelectVariation(*body.VariationID); err != nil {
			return nil, toAPIError(err)
		}
	}
	if body.CustomText != nil {
		if err := w.SetCustomGreeting(*body.CustomText); err != nil {
			return nil, toAPIError(err)
		}
	}
	if body.UseCustom != nil {
		if err := w.UseCustomGreeting(*body.UseCustom); err != nil {
			return nil, toAPIError(err)
		}
	}
	return stateOutput(w, nil)
}

func (s *Server) handleConfirmGreeting(ctx context.Context, input *WizardInput) (*WizardStateOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	_, err = w.ConfirmGreeting()
	return stateOutput(w, err)
}

func (s *Server) handleCustomize(ctx context.Context, input *CustomizeInput) (*CustomizationOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	var c domain.Customization
	if input.Body.Preset != "" {
		if c, err = w.ApplyPreset(input.Body.Preset); err != nil {
			return nil, toAPIError(err)
		}
	}
	if c, err = w.Customize(input.Body.CustomizationPatch); err != nil {
		return nil, toAPIError(err)
	}
	return &CustomizationOutput{Body: c}, nil
}

func (s *Server) handlePreview(ctx context.Context, input *WizardInput) (*PreviewOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	p, err := w.Preview()
	if err != nil {
		return nil, toAPIError(err)
	}
	return &PreviewOutput{Body: p}, nil
}

func (s *Server) handleApply(ctx context.Context, input *WizardInput) (*ApplyOutput, error) {
	w, err := s.wizard(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	// Persisting outlives a client hang-up. The wish service applies its own timeout.
	slug, err := w.Apply(context.WithoutCancel(ctx))
	if err != nil {
		return nil, toAPIError(err)
	}

	s.logger.Info("Wish created", "session_id", w.ID(), "slug", slug)
	return &ApplyOutput{
		Body: ApplyResponse{
			Slug: slug,
			URL:  share.WishURL(s.cfg.PublicURL, slug),
		},
	}, nil
}
