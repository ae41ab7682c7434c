package tui

import (
	"strings"

	"product-catalog/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var formFields = []struct {
	key         string
	label       string
	placeholder string
}{
	{model.FieldTitle, "Title", "Product title"},
	{model.FieldDescription, "Description", "Short description"},
	{model.FieldPrice, "Price", "0.00"},
	{model.FieldCategory, "Category", "e.g. smartphones"},
	{model.FieldStock, "Stock", "0"},
}

// productForm is the add-product form, also used for edits on the
// confirmation screen.
type productForm struct {
	inputs []textinput.Model
	focus  int
	errors model.FieldErrors
}

func newProductForm(values model.ProductForm) productForm {
	initial := []model.FormValue{values.Title, values.Description, values.Price, values.Category, values.Stock}

	f := productForm{inputs: make([]textinput.Model, len(formFields))}
	for i, field := range formFields {
		in := textinput.New()
		in.Placeholder = field.placeholder
		in.CharLimit = 256
		in.SetValue(string(initial[i]))
		f.inputs[i] = in
	}
	f.inputs[0].Focus()
	return f
}

func (f productForm) values() model.ProductForm {
	return model.ProductForm{
		Title:       model.FormValue(f.inputs[0].Value()),
		Description: model.FormValue(f.inputs[1].Value()),
		Price:       model.FormValue(f.inputs[2].Value()),
		Category:    model.FormValue(f.inputs[3].Value()),
		Stock:       model.FormValue(f.inputs[4].Value()),
	}
}

func (f productForm) lastFocused() bool {
	return f.focus == len(f.inputs)-1
}

func (f *productForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *productForm) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		f.move(1)
		return nil
	case "shift+tab", "up":
		f.move(-1)
		return nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f productForm) view() string {
	var b strings.Builder
	for i, field := range formFields {
		b.WriteString(labelStyle.Render(field.label))
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := f.errors[field.key]; ok {
			b.WriteString(strings.Repeat(" ", 13))
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
	}
	return b.String()
}
