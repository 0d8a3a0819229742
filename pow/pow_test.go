package pow

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/hashing"
	"github.com/bitfsorg/libcryptonote-go/wire"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRegistry_ComputeDigest(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(fork.BlobCryptonote, KeccakDigester{}))

	got, err := r.ComputeDigest(fork.BlobCryptonote, []byte("blob"), 10)
	require.NoError(t, err)
	assert.Equal(t, hashing.Keccak256([]byte("blob")), got)
}

func TestRegistry_NoDigester(t *testing.T) {
	r := NewRegistry()
	_, err := r.ComputeDigest(fork.BlobAeon, nil, 0)
	require.ErrorIs(t, err, ErrNoDigester)

	require.NoError(t, r.Register(fork.BlobAeon, KeccakDigester{}))
	r.Unregister(fork.BlobAeon)
	_, err = r.Lookup(fork.BlobAeon)
	require.ErrorIs(t, err, ErrNoDigester)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	r := NewRegistry()
	require.ErrorIs(t, r.Register(fork.BlobCryptonote, nil), ErrNilDigester)
	require.ErrorIs(t, r.Register(fork.BlobType(99), KeccakDigester{}), fork.ErrUnknownProfile)
}

func TestRegistry_PassesArguments(t *testing.T) {
	r := NewRegistry()
	errBoom := errors.New("boom")
	var gotProfile fork.BlobType
	var gotHeight uint64
	require.NoError(t, r.Register(fork.BlobXTA, DigesterFunc(func(p fork.BlobType, data []byte, height uint64) (wire.Hash, error) {
		gotProfile, gotHeight = p, height
		return wire.Hash{}, errBoom
	})))

	_, err := r.ComputeDigest(fork.BlobXTA, []byte{1}, 777)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, fork.BlobXTA, gotProfile)
	assert.Equal(t, uint64(777), gotHeight)
}

func TestRegistry_Profiles(t *testing.T) {
	r := NewRegistry()
	for _, id := range []fork.BlobType{fork.BlobXHV, fork.BlobCryptonote, fork.BlobLoki} {
		require.NoError(t, r.Register(id, KeccakDigester{}))
	}
	assert.Equal(t, []fork.BlobType{fork.BlobCryptonote, fork.BlobLoki, fork.BlobXHV}, r.Profiles())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fork.BlobType(i % 13)
			assert.NoError(t, r.Register(id, KeccakDigester{}))
			_, err := r.ComputeDigest(id, []byte{byte(i)}, uint64(i))
			assert.NoError(t, err)
			r.Profiles()
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.Profiles(), 13)
}
