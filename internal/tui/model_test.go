package tui

import (
	"context"
	"testing"
	"time"

	"product-catalog/internal/model"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/storage"
	"product-catalog/internal/wizard"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tuiNow = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

type fakeRemote struct {
	products  []model.Product
	searchErr error
	created   *model.Product
	createErr error
	requests  []model.CreateProductRequest
}

func (f *fakeRemote) Search(ctx context.Context, term string) ([]model.Product, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.products, nil
}

func (f *fakeRemote) Create(ctx context.Context, req model.CreateProductRequest) (*model.Product, error) {
	f.requests = append(f.requests, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func newTestModel(remote *fakeRemote) (*Model, repository.LocalProductStore) {
	store := repository.NewLocalProductStore(storage.NewMemoryKV(), "addedProducts", zerolog.Nop())
	products := service.NewProductService(store, remote, zerolog.Nop())

	m := NewModel(context.Background(), Deps{
		Search: service.NewSearchGate(products),
		Store:  store,
		Remote: remote,
		Now:    func() time.Time { return tuiNow },
		Logger: zerolog.Nop(),
	})
	return m, store
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg and, when the model answers with a command, runs it and
// delivers the message it produces.
func send(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func settle(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

func fillForm(m *Model, values []string) {
	for i, v := range values {
		m.form.inputs[i].SetValue(v)
	}
}

func TestModel_InitialLoad(t *testing.T) {
	m, _ := newTestModel(&fakeRemote{products: []model.Product{
		{ID: "1", Title: "iPhone 9", Category: "smartphones", Price: 549, Stock: 94},
	}})

	assert.Contains(t, m.View(), "Loading products...")
	assert.Contains(t, m.View(), "2026-10-08 → 2026-10-15")

	settle(m, m.Init())

	view := m.View()
	assert.NotContains(t, view, "Loading products...")
	assert.Contains(t, view, "iPhone 9")
	assert.Contains(t, view, "549.00")
	assert.Len(t, m.table.Rows(), 1)
}

func TestModel_EmptyList(t *testing.T) {
	m, _ := newTestModel(&fakeRemote{})
	settle(m, m.Init())

	assert.Contains(t, m.View(), "No products found.")
}

func TestModel_RemoteErrorIsDismissible(t *testing.T) {
	m, _ := newTestModel(&fakeRemote{searchErr: &repository.RemoteError{StatusCode: 503, Message: "maintenance"}})
	settle(m, m.Init())

	assert.Contains(t, m.View(), "maintenance")

	send(m, key("x"))
	assert.NotContains(t, m.View(), "maintenance")
}

func TestModel_PriceBucketCycles(t *testing.T) {
	m, _ := newTestModel(&fakeRemote{products: []model.Product{
		{ID: "1", Title: "Cheap", Price: 10},
		{ID: "2", Title: "Pricey", Price: 500},
	}})
	settle(m, m.Init())
	require.Len(t, m.table.Rows(), 2)

	settle(m, send(m, key("p")))

	assert.Equal(t, model.BucketBelow50, m.filter.Bucket)
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "Cheap", m.table.Rows()[0][1])
}

func TestModel_SearchNarrowsList(t *testing.T) {
	m, _ := newTestModel(&fakeRemote{products: []model.Product{
		{ID: "1", Title: "iPhone 9", Price: 549},
		{ID: "2", Title: "Mascara", Price: 9},
	}})
	settle(m, m.Init())

	send(m, key("/"))
	require.True(t, m.search.Focused())

	cmd := send(m, key("i"))
	require.NotNil(t, cmd)
	assert.Equal(t, "i", m.filter.Search)

	// The search command is batched with the input's own command.
	list, err := m.deps.Search.Search(context.Background(), m.filter)
	require.NoError(t, err)
	m.Update(productsMsg{list: list})

	// Title match only: "Mascara" has no "i".
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "iPhone 9", m.table.Rows()[0][1])

	send(m, key("esc"))
	assert.False(t, m.search.Focused())
}

func TestModel_DateRangeCannotInvert(t *testing.T) {
	m, _ := newTestModel(&fakeRemote{})

	for i := 0; i < model.DefaultRangeDays+3; i++ {
		send(m, key("{"))
	}

	start, end := m.filter.Range.Strings()
	assert.Equal(t, "2026-10-08", start)
	assert.Equal(t, "2026-10-08", end)

	send(m, key("]"))
	start, _ = m.filter.Range.Strings()
	assert.Equal(t, "2026-10-08", start, "start may not pass the end")
}

func TestModel_AddProductFlow(t *testing.T) {
	remote := &fakeRemote{
		products: []model.Product{{ID: "1", Title: "iPhone 9", Price: 549}},
		created:  &model.Product{ID: "101", Title: "New Widget", Description: "Shiny", Price: 19.5, Category: "tools", Stock: 2},
	}
	m, store := newTestModel(remote)
	settle(m, m.Init())

	send(m, key("a"))
	require.Equal(t, wizard.StepDrafting, m.machine.Step())
	assert.Contains(t, m.View(), "Add Product")

	fillForm(m, []string{"New Widget", "Shiny", "19.5", "tools", "2"})
	send(m, key("ctrl+s"))
	require.Equal(t, wizard.StepReviewing, m.machine.Step())

	view := m.View()
	assert.Contains(t, view, "Confirm Product")
	assert.Contains(t, view, "2026-10-08 → 2026-10-15")
	assert.Contains(t, view, "Confirm & Create")

	createCmd := send(m, key("enter"))
	require.NotNil(t, createCmd)
	assert.Equal(t, wizard.StepCreating, m.machine.Step())
	assert.Contains(t, m.View(), "Creating...")

	reloadCmd := send(m, createCmd())
	assert.Equal(t, wizard.StepListing, m.machine.Step())
	assert.Contains(t, m.View(), "Product created with ID: 101")
	require.Len(t, store.List(), 1)

	settle(m, reloadCmd)
	require.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "101", m.table.Rows()[0][0], "new product is listed first")

	require.Len(t, remote.requests, 1)
	assert.Equal(t, "2026-10-08", remote.requests[0].CreatedFromStartDate)
	assert.Equal(t, "2026-10-15", remote.requests[0].CreatedFromEndDate)
}

func TestModel_InvalidFormShowsErrors(t *testing.T) {
	m, _ := newTestModel(&fakeRemote{})

	send(m, key("a"))
	fillForm(m, []string{"", "Shiny", "abc", "tools", ""})
	send(m, key("ctrl+s"))

	assert.Equal(t, wizard.StepDrafting, m.machine.Step())
	view := m.View()
	assert.Contains(t, view, "Title is required")
	assert.Contains(t, view, "Price must be a number")
}

func TestModel_CreateFailureStaysOnConfirmation(t *testing.T) {
	remote := &fakeRemote{createErr: &repository.RemoteError{StatusCode: 400, Message: "Title too long"}}
	m, store := newTestModel(remote)

	send(m, key("a"))
	fillForm(m, []string{"New Widget", "Shiny", "19.5", "tools", "2"})
	send(m, key("ctrl+s"))

	createCmd := send(m, key("enter"))
	require.NotNil(t, createCmd)
	send(m, createCmd())

	assert.Equal(t, wizard.StepReviewing, m.machine.Step())
	assert.Contains(t, m.View(), "Title too long")
	assert.Empty(t, store.List())

	send(m, key("esc"))
	assert.Equal(t, wizard.StepListing, m.machine.Step())
}

func TestModel_CancelFromForm(t *testing.T) {
	m, store := newTestModel(&fakeRemote{})

	send(m, key("a"))
	fillForm(m, []string{"New Widget", "Shiny", "19.5", "tools", "2"})
	send(m, key("esc"))

	assert.Equal(t, wizard.StepListing, m.machine.Step())
	assert.Empty(t, store.List())
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(&fakeRemote{})

	cmd := send(m, key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}
