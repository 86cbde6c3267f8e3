// Package billing holds the rounding and VAT rules shared by services and
// repositories so package totals are computed identically everywhere.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

const secondsPerHour = 3600

// RoundHours rounds a raw hour value to the 2-decimal precision used on task
// lines and snapshots.
func RoundHours(hours decimal.Decimal) decimal.Decimal {
	return hours.Round(2)
}

// RoundAmount rounds a money value to whole currency units.
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(0)
}

// DeriveTaskHours computes the billable hours for a task: the explicit value
// when present, otherwise the unbilled tracked time converted to hours.
// Negative unbilled time clamps to zero.
func DeriveTaskHours(explicit *decimal.Decimal, secondsSpent, billedSeconds int64) decimal.Decimal {
	if explicit != nil {
		return RoundHours(*explicit)
	}
	unbilled := secondsSpent - billedSeconds
	if unbilled < 0 {
		unbilled = 0
	}
	return RoundHours(decimal.NewFromInt(unbilled).Div(decimal.NewFromInt(secondsPerHour)))
}

// SnapshotTask freezes a task's cost at the package's hourly rate. Hours are
// rounded per task before the amount is taken.
func SnapshotTask(task domain.Task, hourlyRate decimal.Decimal) domain.TaskSnapshot {
	hours := RoundHours(task.Hours)
	return domain.TaskSnapshot{
		TaskID:     task.TaskID,
		Key:        task.Key,
		Hours:      hours,
		HourlyRate: hourlyRate,
		Amount:     RoundAmount(hourlyRate.Mul(hours)),
	}
}

// TotalHours sums per-task rounded hours.
func TotalHours(snapshots []domain.TaskSnapshot) decimal.Decimal {
	total := decimal.Zero
	for _, snap := range snapshots {
		total = total.Add(snap.Hours)
	}
	return total
}

// TotalAmount computes the package amount from its hourly rate and summed hours.
func TotalAmount(hourlyRate, totalHours decimal.Decimal) decimal.Decimal {
	return RoundAmount(hourlyRate.Mul(totalHours))
}

// VATAmount extracts the VAT share from a VAT-inclusive total:
// total − total/(1+percent/100), rounded to whole units.
func VATAmount(totalAmount, vatPercent decimal.Decimal) decimal.Decimal {
	divisor := decimal.NewFromInt(1).Add(vatPercent.Div(decimal.NewFromInt(100)))
	return RoundAmount(totalAmount.Sub(totalAmount.DivRound(divisor, 8)))
}
