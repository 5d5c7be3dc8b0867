package game

import "math/rand"

// WolfCount returns how many hidden wolves a lobby of n players gets.
// The fixed single-wolf policy is authoritative for now. An earlier
// graduated policy scaled with density — n>=4: max(1, n/5), otherwise a
// 20% chance of a lone wolf — and is kept here as documentation of the
// alternative, not as a defect to restore.
func WolfCount(n int) int {
	if n < 1 {
		return 0
	}
	return 1
}

// AssignRoles resets every player to sheep, then marks a uniformly chosen
// subset as wolves. Uniformity comes from a Fisher-Yates shuffle, so the
// choice is independent of join order.
func AssignRoles(players []*Player, rng *rand.Rand) {
	for _, p := range players {
		p.Role = RoleSheep
	}

	wolves := WolfCount(len(players))
	shuffled := make([]*Player, len(players))
	copy(shuffled, players)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for i := 0; i < wolves && i < len(shuffled); i++ {
		shuffled[i].Role = RoleWolf
	}
}
