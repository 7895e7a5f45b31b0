package session

import (
	"testing"

	"github.com/aarondkim/flights/internal/repository"
	"github.com/aarondkim/flights/internal/service/trips"
	"github.com/stretchr/testify/assert"
)

func newRegistry() *Registry {
	svc := trips.NewService(nil, repository.NewUserRepository(), repository.NewFlightRepository(), repository.NewReservationRepository())
	return NewRegistry(svc)
}

func TestRegistry_CreateGetRemove(t *testing.T) {
	r := newRegistry()

	token, sess := r.Create()
	assert.NotEmpty(t, token)
	assert.NotNil(t, sess)

	got, ok := r.Get(token)
	assert.True(t, ok)
	assert.Same(t, sess, got)

	r.Remove(token)
	_, ok = r.Get(token)
	assert.False(t, ok)
}

func TestRegistry_TokensAreUnique(t *testing.T) {
	r := newRegistry()

	t1, s1 := r.Create()
	t2, s2 := r.Create()
	assert.NotEqual(t, t1, t2)
	assert.NotSame(t, s1, s2)
}

func TestRegistry_GetUnknownToken(t *testing.T) {
	r := newRegistry()
	_, ok := r.Get("no-such-token")
	assert.False(t, ok)
}
