package checkout

import (
	"strings"
	"sync"
	"time"
)

const (
	CopyLabel          = "Copiar código"
	CopiedLabel        = "Copiado"
	CopyNoticeDuration = 1500 * time.Millisecond
)

// CopyNotice tracks the transient confirmation shown after the pix code is copied.
type CopyNotice struct {
	now func() time.Time

	mu       sync.Mutex
	copiedAt time.Time
}

// NewCopyNotice uses now as its clock; nil means time.Now.
func NewCopyNotice(now func() time.Time) *CopyNotice {
	if now == nil {
		now = time.Now
	}
	return &CopyNotice{now: now}
}

// Copy records a copy of code. An empty code is ignored.
func (n *CopyNotice) Copy(code string) bool {
	if strings.TrimSpace(code) == "" {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.copiedAt = n.now()
	return true
}

// Label is "Copiado" for 1.5s after a copy, then back to "Copiar código".
func (n *CopyNotice) Label() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.copiedAt.IsZero() && n.now().Sub(n.copiedAt) < CopyNoticeDuration {
		return CopiedLabel
	}
	return CopyLabel
}
