package core

// CategoryAmount represents an amount aggregated by expense category.
type CategoryAmount struct {
	Category ExpenseCategory `json:"category"`
	Amount   Money           `json:"amount"`
}

// SumAmounts totals the amounts of expenses accepted by keep (all when keep is nil).
func SumAmounts(expenses []Expense, keep func(Expense) bool) Money {
	var total Money
	for _, e := range expenses {
		if keep == nil || keep(e) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// ByCategory returns per-category subtotals for every category, in enum order.
func ByCategory(expenses []Expense) []CategoryAmount {
	sums := make(map[ExpenseCategory]Money, len(expenseCategories))
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}
	out := make([]CategoryAmount, 0, len(expenseCategories))
	for _, c := range expenseCategories {
		out = append(out, CategoryAmount{Category: c, Amount: sums[c]})
	}
	return out
}
