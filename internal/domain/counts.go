package domain

import "fmt"

// Counts is the three-state ledger of one ticket type. Every unit of Total is
// exactly one of available, reserved or sold.
type Counts struct {
	Total     int64 `json:"totalCount"`
	Available int64 `json:"availableCount"`
	Sold      int64 `json:"soldCount"`
	Reserved  int64 `json:"reservedCount"`
}

// NewCounts returns a fresh ledger with every unit available.
func NewCounts(total int64) (Counts, error) {
	if total < 0 {
		return Counts{}, fmt.Errorf("%w: total %d is negative", ErrInvalidQuantity, total)
	}

	return Counts{Total: total, Available: total}, nil
}

// Validate checks the ledger invariant.
func (c Counts) Validate() error {
	if c.Total < 0 || c.Available < 0 || c.Reserved < 0 || c.Sold < 0 {
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidQuantity)
	}

	// overridden counters may be near MaxInt64, so nothing here is summed
	rest := c.Total - c.Available
	if rest < 0 || c.Reserved > rest || c.Sold != rest-c.Reserved {
		return fmt.Errorf(
			"%w: available %d + reserved %d + sold %d != total %d",
			ErrInvalidQuantity, c.Available, c.Reserved, c.Sold, c.Total,
		)
	}

	return nil
}

// Reserve moves n units from available to reserved.
func (c Counts) Reserve(n int64) (Counts, error) {
	if err := checkPositive(n); err != nil {
		return c, err
	}

	if c.Available < n {
		return c, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientInventory, n, c.Available)
	}

	c.Available -= n
	c.Reserved += n

	return c, nil
}

// Release moves n units from reserved back to available.
func (c Counts) Release(n int64) (Counts, error) {
	if err := checkPositive(n); err != nil {
		return c, err
	}

	if c.Reserved < n {
		return c, fmt.Errorf("%w: requested %d, reserved %d", ErrOverRelease, n, c.Reserved)
	}

	c.Reserved -= n
	c.Available += n

	return c, nil
}

// Confirm moves n units from reserved to sold.
func (c Counts) Confirm(n int64) (Counts, error) {
	if err := checkPositive(n); err != nil {
		return c, err
	}

	if c.Reserved < n {
		return c, fmt.Errorf("%w: requested %d, reserved %d", ErrOverConfirm, n, c.Reserved)
	}

	c.Reserved -= n
	c.Sold += n

	return c, nil
}

// Resize changes the capacity. The difference is applied to the available
// pool; reserved and sold units are never touched.
func (c Counts) Resize(total int64) (Counts, error) {
	if total < 0 {
		return c, fmt.Errorf("%w: total %d is negative", ErrInvalidQuantity, total)
	}

	available := c.Available + (total - c.Total)
	if available < 0 {
		return c, fmt.Errorf(
			"%w: cannot reduce total to %d below sold %d and reserved %d tickets",
			ErrInvalidQuantity, total, c.Sold, c.Reserved,
		)
	}

	c.Available = available
	c.Total = total

	return c, nil
}

// CountsPatch is an administrative override of individual counters.
type CountsPatch struct {
	Available *int64
	Reserved  *int64
	Sold      *int64
}

// Apply overwrites the given counters and checks the result still balances
// against the unchanged total.
func (c Counts) Apply(p CountsPatch) (Counts, error) {
	out := c
	if p.Available != nil {
		out.Available = *p.Available
	}

	if p.Reserved != nil {
		out.Reserved = *p.Reserved
	}

	if p.Sold != nil {
		out.Sold = *p.Sold
	}

	if err := out.Validate(); err != nil {
		return c, err
	}

	return out, nil
}

func checkPositive(n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidQuantity, n)
	}

	return nil
}
