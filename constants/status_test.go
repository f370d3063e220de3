package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]ExpenseStatus{
		{StatusDraft, StatusProcessing},
		{StatusProcessing, StatusPending},
		{StatusProcessing, StatusFailed},
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]ExpenseStatus{
		{StatusDraft, StatusPending},
		{StatusDraft, StatusApproved},
		{StatusPending, StatusProcessing},
		{StatusFailed, StatusProcessing},
		{StatusApproved, StatusRejected},
		{StatusRejected, StatusApproved},
		{StatusProcessing, StatusProcessing},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusPending.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "jpeg", NormalizeExt("jpeg"))
	assert.Equal(t, "", NormalizeExt(""))
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, "PDF", MapExtToFormat(".pdf"))
	assert.Equal(t, "IMAGE", MapExtToFormat("JPG"))
	assert.Equal(t, "IMAGE", MapExtToFormat("png"))
	assert.Equal(t, "", MapExtToFormat(".txt"))
}
