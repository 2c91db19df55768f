package token

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginTokenSingleUse(t *testing.T) {
	s := NewStore()
	tok := s.GenerateLogin(7, 3)
	require.NotZero(t, tok)

	v, ok := s.ConsumeLogin(tok)
	require.True(t, ok)
	assert.Equal(t, uint32(7), v.AccountID)
	assert.Equal(t, uint32(3), v.RealmID)

	_, ok = s.ConsumeLogin(tok)
	assert.False(t, ok)
	assert.Zero(t, s.LoginCount())
}

func TestUnknownTokenMisses(t *testing.T) {
	s := NewStore()
	_, ok := s.ConsumeLogin(0xDEADBEEF)
	assert.False(t, ok)
}

func TestCreationTokenSingleUse(t *testing.T) {
	s := NewStore()
	s.StoreCreation(42, 7, 3)
	v, ok := s.ConsumeCreation(42)
	require.True(t, ok)
	assert.Equal(t, uint32(7), v.AccountID)
	_, ok = s.ConsumeCreation(42)
	assert.False(t, ok)
}

func TestConcurrentConsumeYieldsOneWinner(t *testing.T) {
	s := NewStore()
	tok := s.GenerateLogin(1, 1)

	const racers = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.ConsumeLogin(tok); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)
	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestGeneratedTokensAreDistinct(t *testing.T) {
	s := NewStore()
	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		tok := s.GenerateLogin(uint32(i), 1)
		require.False(t, seen[tok])
		seen[tok] = true
	}
	assert.Equal(t, 1000, s.LoginCount())
}
