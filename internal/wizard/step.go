package wizard

import "fmt"

// Step is a screen of the wish wizard.
type Step int

// Wizard steps in flow order. The first five are the numbered form steps.
const (
	StepOccasion Step = iota + 1
	StepRecipient
	StepNote
	StepPhotos
	StepReview
	StepTemplateSelect
	StepGreetingSelect
	StepCustomize
	StepComplete
)

// FormSteps is the denominator of the "Step N of M" progress label.
const FormSteps = 6

var stepNames = map[Step]string{
	StepOccasion:       "occasion",
	StepRecipient:      "recipient",
	StepNote:           "note",
	StepPhotos:         "photos",
	StepReview:         "review",
	StepTemplateSelect: "template_select",
	StepGreetingSelect: "greeting_select",
	StepCustomize:      "customize",
	StepComplete:       "complete",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

// IsForm reports whether s is one of the numbered form steps.
func (s Step) IsForm() bool {
	return s >= StepOccasion && s <= StepReview
}

// Progress returns the "Step N of 6" label, or "" outside the form steps.
func (s Step) Progress() string {
	if !s.IsForm() {
		return ""
	}
	return fmt.Sprintf("Step %d of %d", int(s), FormSteps)
}

// ContinueLabel is the caption of the primary action on s.
func (s Step) ContinueLabel() string {
	switch s {
	case StepOccasion, StepRecipient, StepNote, StepPhotos:
		return "Continue"
	case StepReview:
		return "Choose Template"
	case StepGreetingSelect:
		return "Continue with Selected Message"
	case StepCustomize:
		return "Apply Customizations"
	default:
		return ""
	}
}

// ParseStep returns the step with the given name.
func ParseStep(name string) (Step, bool) {
	for s, n := range stepNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}
