package game

import (
	"fmt"
	"math/rand"
	"testing"
)

func makePlayers(n int) []*Player {
	out := make([]*Player, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, NewPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i), "#ffffff"))
	}
	return out
}

func countWolves(players []*Player) int {
	n := 0
	for _, p := range players {
		if p.Role == RoleWolf {
			n++
		}
	}
	return n
}

func TestWolfCountPolicy(t *testing.T) {
	cases := []struct {
		players int
		want    int
	}{
		{players: 0, want: 0},
		{players: 1, want: 1},
		{players: 4, want: 1},
		{players: 25, want: 1},
	}
	for _, tc := range cases {
		if got := WolfCount(tc.players); got != tc.want {
			t.Fatalf("WolfCount(%d): want %d, got %d", tc.players, tc.want, got)
		}
	}
}

func TestAssignRolesExactlyOneWolf(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n <= 8; n++ {
		players := makePlayers(n)
		// Prior roles must not leak into a new assignment.
		players[0].Role = RoleWolf

		AssignRoles(players, rng)
		if got := countWolves(players); got != 1 {
			t.Fatalf("n=%d: want exactly 1 wolf, got %d", n, got)
		}
	}
}

func TestAssignRolesUniformAcrossPlayers(t *testing.T) {
	const trials = 4000
	const n = 4

	rng := rand.New(rand.NewSource(42))
	players := makePlayers(n)
	hits := make(map[string]int, n)

	for i := 0; i < trials; i++ {
		AssignRoles(players, rng)
		for _, p := range players {
			if p.Role == RoleWolf {
				hits[p.ID]++
			}
		}
	}

	// Each player should be the wolf about trials/n times; a 30% band is
	// generous for this many trials while still catching join-order bias.
	expected := trials / n
	for _, p := range players {
		got := hits[p.ID]
		if got < expected*7/10 || got > expected*13/10 {
			t.Fatalf("player %s chosen %d times, expected ~%d", p.ID, got, expected)
		}
	}
}
