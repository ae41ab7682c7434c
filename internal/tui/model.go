package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"product-catalog/internal/model"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/wizard"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Deps are the components the terminal client drives.
type Deps struct {
	Search *service.SearchGate
	Store  repository.LocalProductStore
	Remote repository.RemoteProductSource
	Now    func() time.Time
	Logger zerolog.Logger
}

type productsMsg struct {
	list *model.ProductList
}

type searchFailedMsg struct {
	err error
}

type createdMsg struct {
	product model.Product
}

type createFailedMsg struct {
	message string
}

// Model is the root bubbletea model. The wizard machine decides which screen
// is shown: the list in Listing, the form in Drafting, and the confirmation
// screen in Reviewing and Creating.
type Model struct {
	ctx     context.Context
	deps    Deps
	logger  zerolog.Logger
	machine *wizard.Machine

	filter  model.FilterState
	search  textinput.Model
	table   table.Model
	list    *model.ProductList
	loading bool
	errText string
	status  string

	form     productForm
	width    int
	height   int
	quitting bool
}

// NewModel creates the root model. ctx bounds every request it issues.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	search := textinput.New()
	search.Placeholder = "Search by title"
	search.Prompt = "Search: "
	search.CharLimit = 100

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 10},
			{Title: "Title", Width: 32},
			{Title: "Category", Width: 16},
			{Title: "Price", Width: 10},
			{Title: "Stock", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return &Model{
		ctx:     ctx,
		deps:    deps,
		logger:  deps.Logger.With().Str("component", "tui").Logger(),
		machine: wizard.New(),
		filter:  model.DefaultFilterState(deps.Now()),
		search:  search,
		table:   t,
		loading: true,
	}
}

// Init loads the initial list.
func (m *Model) Init() tea.Cmd {
	return m.searchCmd()
}

func (m *Model) searchCmd() tea.Cmd {
	gate, ctx, filter := m.deps.Search, m.ctx, m.filter
	m.loading = true

	return func() tea.Msg {
		list, err := gate.Search(ctx, filter)
		if errors.Is(err, service.ErrSuperseded) {
			return nil
		}
		if err != nil {
			return searchFailedMsg{err: err}
		}
		return productsMsg{list: list}
	}
}

func (m *Model) createCmd(req model.CreateProductRequest) tea.Cmd {
	remote, ctx := m.deps.Remote, m.ctx

	return func() tea.Msg {
		created, err := remote.Create(ctx, req)
		if err != nil {
			return createFailedMsg{message: failureMessage(err)}
		}
		return createdMsg{product: *created}
	}
}

func failureMessage(err error) string {
	var remoteErr *repository.RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return remoteErr.Message
	}
	return "Failed to create product"
}

// Update handles messages for the current screen.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if h := msg.Height - 12; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case productsMsg:
		m.loading = false
		m.list = msg.list
		m.errText = msg.list.RemoteError
		m.table.SetRows(rows(msg.list.Products))
		m.table.GotoTop()
		return m, nil

	case searchFailedMsg:
		m.loading = false
		m.errText = msg.err.Error()
		return m, nil

	case createdMsg:
		return m, m.handleCreated(msg.product)

	case createFailedMsg:
		if err := m.machine.Fail(msg.message); err != nil {
			m.logger.Warn().Err(err).Msg("unexpected creation failure")
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.machine.Step() {
		case wizard.StepListing:
			return m, m.updateList(msg)
		case wizard.StepDrafting:
			return m, m.updateForm(msg)
		case wizard.StepReviewing:
			return m, m.updateConfirm(msg)
		}
	}

	return m, nil
}

func (m *Model) handleCreated(p model.Product) tea.Cmd {
	if err := m.machine.Succeed(p); err != nil {
		m.logger.Warn().Err(err).Msg("unexpected creation result")
		return nil
	}

	created, ok := m.machine.TakeCreated()
	if !ok {
		return nil
	}
	m.deps.Store.Add(m.ctx, created)
	m.status = fmt.Sprintf("Product created with ID: %s", created.ID)
	return m.searchCmd()
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	if m.search.Focused() {
		switch msg.String() {
		case "enter", "esc":
			m.search.Blur()
			return nil
		}

		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() == before {
			return cmd
		}
		m.filter.Search = m.search.Value()
		return tea.Batch(cmd, m.searchCmd())
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return tea.Quit
	case "/":
		return m.search.Focus()
	case "p":
		m.filter.Bucket = m.filter.Bucket.Next()
		return m.searchCmd()
	case "r":
		return m.searchCmd()
	case "x":
		m.errText = ""
		return nil
	case "[", "]", "{", "}":
		m.shiftRange(msg.String())
		return nil
	case "a":
		if err := m.machine.Open(); err != nil {
			return nil
		}
		m.status = ""
		m.form = newProductForm(model.ProductForm{})
		return textinput.Blink
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// shiftRange moves a bound of the date range by one day. Moves that would put
// the end before the start are ignored.
func (m *Model) shiftRange(key string) {
	r := m.filter.Range
	switch key {
	case "[":
		r.Start = r.Start.AddDate(0, 0, -1)
	case "]":
		r.Start = r.Start.AddDate(0, 0, 1)
	case "{":
		r.End = r.End.AddDate(0, 0, -1)
	case "}":
		r.End = r.End.AddDate(0, 0, 1)
	}
	if r.Validate() == nil {
		m.filter.Range = r
	}
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		_ = m.machine.Cancel()
		return nil
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.form.lastFocused() {
			return m.submit()
		}
		m.form.move(1)
		return nil
	}
	return m.form.update(msg)
}

func (m *Model) submit() tea.Cmd {
	err := m.machine.Submit(m.form.values(), m.filter.Range)

	var fieldErrs model.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		m.form.errors = fieldErrs
		return nil
	case err != nil:
		m.status = err.Error()
		return nil
	}

	review, err := m.machine.Review()
	if err != nil {
		return nil
	}
	m.form = newProductForm(review.Draft.Form())
	return textinput.Blink
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		_ = m.machine.Cancel()
		return nil
	case "enter", "ctrl+s":
		req, err := m.machine.Confirm(m.form.values())
		var fieldErrs model.FieldErrors
		if errors.As(err, &fieldErrs) {
			m.form.errors = fieldErrs
			return nil
		}
		if err != nil {
			return nil
		}
		m.form.errors = nil
		return m.createCmd(req)
	}
	return m.form.update(msg)
}

// View renders the current screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.machine.Step() {
	case wizard.StepDrafting:
		return m.formView()
	case wizard.StepReviewing, wizard.StepCreating:
		return m.confirmView()
	default:
		return m.listView()
	}
}

func (m *Model) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Product Catalog"))
	b.WriteString("\n")

	start, end := m.filter.Range.Strings()
	b.WriteString(filterStyle.Render(fmt.Sprintf("Date range: %s → %s   %s", start, end, m.filter.Bucket.Label())))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText))
		b.WriteString(helpStyle.UnsetMargins().Render("  (x to dismiss)"))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(successStyle.Render(m.status))
		b.WriteString("\n")
	}

	switch {
	case (m.list == nil || len(m.list.Products) == 0) && m.loading:
		b.WriteString("Loading products...")
	case m.list == nil || len(m.list.Products) == 0:
		b.WriteString("No products found.")
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(filterStyle.Render(fmt.Sprintf("%d added locally, %d from catalogue", m.list.LocalCount, m.list.RemoteCount)))
		if m.loading {
			b.WriteString("  ")
			b.WriteString(warningStyle.Render("Loading products..."))
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("a: add product • /: search • p: price • [ ]: start date • { }: end date • r: reload • q: quit"))
	return b.String()
}

func (m *Model) formView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Add Product"))
	b.WriteString("\n")
	b.WriteString(formStyle.Render(m.form.view()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • enter on last field / ctrl+s: continue • esc: cancel"))
	return b.String()
}

func (m *Model) confirmView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Confirm Product"))
	b.WriteString("\n")

	review, err := m.machine.Review()
	if err != nil {
		b.WriteString(errorStyle.Render(err.Error()))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc: back to products"))
		return b.String()
	}

	b.WriteString(filterStyle.Render(fmt.Sprintf("Date range: %s → %s", review.Draft.StartDate, review.Draft.EndDate)))
	b.WriteString("\n")
	b.WriteString(formStyle.Render(m.form.view()))
	b.WriteString("\n")

	if review.Message != "" {
		b.WriteString(errorStyle.Render(review.Message))
		b.WriteString("\n")
	}

	if m.machine.Step() == wizard.StepCreating {
		b.WriteString(warningStyle.Render("Creating..."))
		return b.String()
	}

	b.WriteString(helpStyle.Render("enter: Confirm & Create • tab: edit fields • esc: cancel"))
	return b.String()
}

func rows(products []model.Product) []table.Row {
	out := make([]table.Row, 0, len(products))
	for _, p := range products {
		out = append(out, table.Row{
			string(p.ID),
			p.Title,
			p.Category,
			fmt.Sprintf("%.2f", p.Price),
			fmt.Sprintf("%d", p.Stock),
		})
	}
	return out
}
