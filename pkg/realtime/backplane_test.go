package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackplaneCloseWithoutStart(t *testing.T) {
	b := NewBackplane(NewHub(4, nil), nil, "rt", nil)

	closed := make(chan error, 1)
	go func() { closed <- b.Close() }()

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("close blocked without a running relay")
	}
}
