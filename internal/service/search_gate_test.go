package service

import (
	"context"
	"testing"

	"product-catalog/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// gatedRemote blocks searches for "slow" until released or cancelled.
type gatedRemote struct {
	MockRemoteProductSource
	started      chan struct{}
	release      chan struct{}
	ignoreCancel bool
}

func newGatedRemote(ignoreCancel bool) *gatedRemote {
	return &gatedRemote{
		started:      make(chan struct{}),
		release:      make(chan struct{}),
		ignoreCancel: ignoreCancel,
	}
}

func (r *gatedRemote) Search(ctx context.Context, term string) ([]model.Product, error) {
	if term != "slow" {
		return []model.Product{{ID: "1", Title: "Fast phone", Price: 10}}, nil
	}

	close(r.started)
	if r.ignoreCancel {
		<-r.release
		return []model.Product{{ID: "2", Title: "slow lane", Price: 10}}, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.release:
		return []model.Product{{ID: "2", Title: "slow lane", Price: 10}}, nil
	}
}

func newGate(remote *gatedRemote) *SearchGate {
	store := new(MockLocalProductStore)
	store.On("List").Return([]model.Product{})
	return NewSearchGate(NewProductService(store, remote, zerolog.Nop()))
}

func TestSearchGate_NewSearchCancelsInFlight(t *testing.T) {
	ctx := context.Background()
	remote := newGatedRemote(false)
	gate := newGate(remote)

	errCh := make(chan error, 1)
	go func() {
		_, err := gate.Search(ctx, model.FilterState{Search: "slow"})
		errCh <- err
	}()
	<-remote.started

	list, err := gate.Search(ctx, model.FilterState{Search: "phone"})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Fast phone", list.Products[0].Title)

	assert.ErrorIs(t, <-errCh, ErrSuperseded)
}

func TestSearchGate_LateResultIsDropped(t *testing.T) {
	ctx := context.Background()
	remote := newGatedRemote(true)
	gate := newGate(remote)

	errCh := make(chan error, 1)
	go func() {
		_, err := gate.Search(ctx, model.FilterState{Search: "slow"})
		errCh <- err
	}()
	<-remote.started

	_, err := gate.Search(ctx, model.FilterState{Search: "phone"})
	require.NoError(t, err)

	close(remote.release)
	assert.ErrorIs(t, <-errCh, ErrSuperseded)
}

func TestSearchGate_Stop(t *testing.T) {
	remote := newGatedRemote(false)
	gate := newGate(remote)

	errCh := make(chan error, 1)
	go func() {
		_, err := gate.Search(context.Background(), model.FilterState{Search: "slow"})
		errCh <- err
	}()
	<-remote.started

	gate.Stop()
	assert.ErrorIs(t, <-errCh, ErrSuperseded)
}

func TestSearchGate_SingleSearchDelivers(t *testing.T) {
	store := new(MockLocalProductStore)
	remote := new(MockRemoteProductSource)
	gate := NewSearchGate(NewProductService(store, remote, zerolog.Nop()))

	store.On("List").Return([]model.Product{{ID: "101", Title: "New Widget", Price: 10}})
	remote.On("Search", mock.Anything, "").Return([]model.Product{{ID: "1", Title: "Mascara", Price: 9}}, nil)

	list, err := gate.Search(context.Background(), model.FilterState{})

	require.NoError(t, err)
	assert.Equal(t, 1, list.LocalCount)
	assert.Equal(t, 1, list.RemoteCount)
}
