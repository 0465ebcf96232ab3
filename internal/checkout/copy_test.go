package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCopyNoticeRevertsAfterDuration(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	n := NewCopyNotice(func() time.Time { return now })
	require.Equal(t, CopyLabel, n.Label())

	require.False(t, n.Copy("  "))
	require.Equal(t, CopyLabel, n.Label())

	require.True(t, n.Copy("000201PIX"))
	require.Equal(t, CopiedLabel, n.Label())

	now = now.Add(1499 * time.Millisecond)
	require.Equal(t, CopiedLabel, n.Label())

	now = now.Add(time.Millisecond)
	require.Equal(t, CopyLabel, n.Label())
}
