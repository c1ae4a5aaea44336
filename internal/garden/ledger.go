package garden

// Economy constants. Costs are enforced by the caller through Debit before
// any growth or acquisition state is touched.
const (
	WaterCost         = 5
	WaterGrowth       = 10
	AcquireCost       = 50
	CheckInReward     = 10
	DefaultCardReward = 10
	MinCardReward     = 5
	MaxCardReward     = 15
)

// NormalizeReward returns r when it lies in [MinCardReward, MaxCardReward]
// and DefaultCardReward otherwise.
func NormalizeReward(r int) int {
	if r < MinCardReward || r > MaxCardReward {
		return DefaultCardReward
	}
	return r
}

// Credit adds amount to the sunlight balance. Negative amounts are ignored.
func (s *UserStats) Credit(amount int) {
	if amount <= 0 {
		return
	}
	s.Sunlight += amount
}

// CreditLearned credits a knowledge-card reward and counts the card as
// learned. Watering and check-in credit never go through here.
func (s *UserStats) CreditLearned(amount int) {
	s.Credit(amount)
	s.TotalKnowledgeLearned++
}

// Debit removes amount from the balance if, and only if, the balance covers
// it. There is no partial debit: on false the balance is unchanged.
func (s *UserStats) Debit(amount int) bool {
	if amount < 0 || s.Sunlight < amount {
		return false
	}
	s.Sunlight -= amount
	return true
}

// CanAfford reports whether a debit of amount would succeed.
func (s *UserStats) CanAfford(amount int) bool {
	return amount >= 0 && s.Sunlight >= amount
}
