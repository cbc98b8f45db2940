package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zenibako/cueplayer/cue"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
)

// Editor is the cue settings dialog. Only fields the user changed are
// returned, so editing several cues leaves their other settings alone.
type Editor struct {
	run func(form *huh.Form, values []*formValue) error
}

// NewEditor creates a dialog that runs its forms under ctx.
func NewEditor(ctx context.Context) *Editor {
	return &Editor{run: func(form *huh.Form, _ []*formValue) error {
		return form.RunWithContext(ctx)
	}}
}

// formValue is one input bound to a form field.
type formValue struct {
	field    cue.Field
	original string
	value    string
}

func (e *Editor) EditCue(c *cue.Cue) (cue.Properties, bool, error) {
	return e.edit(fmt.Sprintf("Edit %s", c.Label()), c.Kind(), c.Properties())
}

func (e *Editor) EditKind(kind cue.Kind, cues []*cue.Cue) (cue.Properties, bool, error) {
	return e.edit(fmt.Sprintf("Edit %d %s cues", len(cues), kind), kind, sharedProperties(kind, cues))
}

func (e *Editor) edit(title string, kind cue.Kind, current cue.Properties) (cue.Properties, bool, error) {
	values := formValues(kind, current)
	form := buildForm(title, values)

	if err := e.run(form, values); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cue settings: %w", err)
	}

	settings, err := collect(values)
	if err != nil {
		return nil, false, err
	}
	log.Debug("Cue settings collected", "kind", kind, "changed", len(settings))
	return settings, true, nil
}

// sharedProperties keeps the values every cue agrees on.
func sharedProperties(kind cue.Kind, cues []*cue.Cue) cue.Properties {
	shared := cue.Properties{}
	if len(cues) == 0 {
		return shared
	}
	first := cues[0].Properties()
	for _, f := range cue.Fields(kind) {
		v, ok := first[f.Key]
		if !ok {
			continue
		}
		same := true
		for _, c := range cues[1:] {
			other, ok := c.Property(f.Key)
			if !ok || formatValue(other) != formatValue(v) {
				same = false
				break
			}
		}
		if same {
			shared[f.Key] = v
		}
	}
	return shared
}

func formValues(kind cue.Kind, current cue.Properties) []*formValue {
	fields := cue.Fields(kind)
	values := make([]*formValue, 0, len(fields))
	for _, f := range fields {
		s := ""
		if v, ok := current[f.Key]; ok {
			s = formatValue(v)
		}
		values = append(values, &formValue{field: f, original: s, value: s})
	}
	return values
}

func buildForm(title string, values []*formValue) *huh.Form {
	fields := make([]huh.Field, 0, len(values)+1)
	fields = append(fields, huh.NewNote().Title(title))

	for _, v := range values {
		switch v.field.Type {
		case cue.FieldBool:
			fields = append(fields, huh.NewSelect[string]().
				Title(v.field.Label).
				Options(
					huh.NewOption("unchanged", v.original),
					huh.NewOption("yes", "true"),
					huh.NewOption("no", "false"),
				).
				Value(&v.value))
		case cue.FieldNumber:
			fields = append(fields, huh.NewInput().
				Title(v.field.Label).
				Value(&v.value).
				Validate(validateNumber))
		default:
			fields = append(fields, huh.NewInput().
				Title(v.field.Label).
				Value(&v.value))
		}
	}

	return huh.NewForm(huh.NewGroup(fields...))
}

func validateNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return errors.New("must be a number")
	}
	return nil
}

// collect converts changed inputs back to typed properties.
func collect(values []*formValue) (cue.Properties, error) {
	settings := cue.Properties{}
	for _, v := range values {
		if v.value == v.original {
			continue
		}
		raw := strings.TrimSpace(v.value)

		switch v.field.Type {
		case cue.FieldNumber:
			if raw == "" {
				settings[v.field.Key] = 0.0
				continue
			}
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a number", v.field.Label, raw)
			}
			settings[v.field.Key] = f
		case cue.FieldBool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not yes or no", v.field.Label, raw)
			}
			settings[v.field.Key] = b
		default:
			settings[v.field.Key] = v.value
		}
	}
	return settings, nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
