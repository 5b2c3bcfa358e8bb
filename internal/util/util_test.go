package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a  b\n\n\tc "))
	assert.Equal(t, "", CleanText(" \n "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "héllo", Truncate("héllo", 10))
	assert.Equal(t, "héllo", Truncate("héllo", 0))
	assert.Equal(t, "abc...", Excerpt("abcdef", 3))
	assert.Equal(t, "abc", Excerpt("abc", 3))
}

func TestSameText(t *testing.T) {
	assert.True(t, SameText("Dental  Clinics", `"dental clinics"`))
	assert.False(t, SameText("dental clinics", "dental clinics austin"))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, Dedupe([]string{"a@x.com", " ", "A@x.com", "b@x.com"}))
}

func TestCanonicalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"HTTPS://Acme.COM/?utm_source=x", "https://acme.com"},
		{"https://acme.com/about?b=2&a=1#team", "https://acme.com/about?a=1&b=2"},
		{"https://acme.com/x?gclid=1&id=3", "https://acme.com/x?id=3"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalizeURL(tt.in), tt.in)
	}
}

func TestHostHelpers(t *testing.T) {
	assert.True(t, IsWebURL("https://acme.com/x"))
	assert.False(t, IsWebURL("ftp://acme.com"))
	assert.False(t, IsWebURL("/relative"))
	assert.Equal(t, "acme-dental.com", Host("https://WWW.Acme-Dental.com/contact"))
	assert.Equal(t, "Acme Dental", CompanyFromHost("https://www.acme-dental.com/"))
	assert.Equal(t, "", CompanyFromHost("not a url"))
}

func TestPacerWaitsBeforeFirstCall(t *testing.T) {
	start := time.Now()
	p := NewPacer(40 * time.Millisecond)

	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestPacerDelayCountsFromDone(t *testing.T) {
	p := NewPacer(40 * time.Millisecond)
	ctx := context.Background()
	require.NoError(t, p.Wait(ctx))

	// a paced call slower than the delay must not use up the pause
	time.Sleep(80 * time.Millisecond)
	p.Done()

	finished := time.Now()
	require.NoError(t, p.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(finished), 35*time.Millisecond)
}

func TestPacerZeroDelay(t *testing.T) {
	p := NewPacer(0)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
}

func TestPacerHonoursContext(t *testing.T) {
	p := NewPacer(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Wait(ctx))
}
