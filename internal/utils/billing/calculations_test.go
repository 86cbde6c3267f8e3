package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/utils/billing"
)

func TestDeriveTaskHours_Explicit(t *testing.T) {
	explicit := decimal.RequireFromString("3.456")
	hours := billing.DeriveTaskHours(&explicit, 99999, 0)
	assert.True(t, decimal.RequireFromString("3.46").Equal(hours), "got %s", hours)
}

func TestDeriveTaskHours_FromSeconds(t *testing.T) {
	// 5400 unbilled seconds = 1.5 hours
	hours := billing.DeriveTaskHours(nil, 9000, 3600)
	assert.True(t, decimal.RequireFromString("1.5").Equal(hours), "got %s", hours)
}

func TestDeriveTaskHours_ClampsNegative(t *testing.T) {
	hours := billing.DeriveTaskHours(nil, 1000, 5000)
	assert.True(t, hours.IsZero(), "got %s", hours)
}

func TestSnapshotTask_FreezesCost(t *testing.T) {
	task := domain.Task{
		TaskID: "t1",
		Key:    "PRJ-1",
		Hours:  decimal.RequireFromString("2.5"),
	}
	rate := decimal.NewFromInt(1200)

	snap := billing.SnapshotTask(task, rate)

	assert.Equal(t, "t1", snap.TaskID)
	assert.True(t, decimal.RequireFromString("2.5").Equal(snap.Hours))
	assert.True(t, decimal.NewFromInt(3000).Equal(snap.Amount), "got %s", snap.Amount)
}

func TestTotals_SpecimenPackage(t *testing.T) {
	// Two tasks, 3h + 2h at 1000/h.
	snaps := []domain.TaskSnapshot{
		{TaskID: "t1", Hours: decimal.NewFromInt(3)},
		{TaskID: "t2", Hours: decimal.NewFromInt(2)},
	}

	totalHours := billing.TotalHours(snaps)
	require.True(t, decimal.NewFromInt(5).Equal(totalHours))

	totalAmount := billing.TotalAmount(decimal.NewFromInt(1000), totalHours)
	require.True(t, decimal.NewFromInt(5000).Equal(totalAmount))

	vat := billing.VATAmount(totalAmount, decimal.NewFromInt(20))
	assert.True(t, decimal.NewFromInt(833).Equal(vat), "got %s", vat)
}

func TestVATAmount_ZeroPercent(t *testing.T) {
	vat := billing.VATAmount(decimal.NewFromInt(5000), decimal.Zero)
	assert.True(t, vat.IsZero(), "got %s", vat)
}
