package services

import (
	"fmt"
	"sort"
	"strings"

	"liquido/contexts/governance/liquid-democracy/domain/entities"
)

// UnrankedPolicy decides how candidates missing from a ballot are counted.
type UnrankedPolicy string

const (
	// UnrankedIgnore treats unranked candidates as giving no pairwise
	// preference at all.
	UnrankedIgnore UnrankedPolicy = "ignore"
	// UnrankedLast ranks every unranked candidate behind all ranked ones.
	UnrankedLast UnrankedPolicy = "last"
)

func ParseUnrankedPolicy(raw string) (UnrankedPolicy, error) {
	switch UnrankedPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", UnrankedIgnore:
		return UnrankedIgnore, nil
	case UnrankedLast:
		return UnrankedLast, nil
	default:
		return "", fmt.Errorf("unknown unranked policy %q", raw)
	}
}

// RankedPairs computes Condorcet winners with Tideman's ranked pairs method.
type RankedPairs struct {
	Unranked UnrankedPolicy
}

// DuelMatrix returns matrix[i][j] = number of ballots ranking candidate i
// strictly ahead of candidate j. Ids not in candidateIDs and repeated ids are
// ignored.
func (rp RankedPairs) DuelMatrix(candidateIDs []string, ballots [][]string) [][]int {
	index := make(map[string]int, len(candidateIDs))
	for i, id := range candidateIDs {
		index[id] = i
	}
	matrix := newMatrix(len(candidateIDs))

	for _, voteOrder := range ballots {
		ranked := make([]int, 0, len(voteOrder))
		seen := make([]bool, len(candidateIDs))
		for _, id := range voteOrder {
			i, ok := index[id]
			if !ok || seen[i] {
				continue
			}
			seen[i] = true
			ranked = append(ranked, i)
		}
		for a := 0; a < len(ranked); a++ {
			for b := a + 1; b < len(ranked); b++ {
				matrix[ranked[a]][ranked[b]]++
			}
		}
		if rp.Unranked == UnrankedLast {
			for _, r := range ranked {
				for u := range candidateIDs {
					if !seen[u] {
						matrix[r][u]++
					}
				}
			}
		}
	}
	return matrix
}

// Tally builds the duel matrix and runs the lock-in over it.
func (rp RankedPairs) Tally(candidateIDs []string, ballots [][]string) entities.TallyResult {
	matrix := rp.DuelMatrix(candidateIDs, ballots)
	result := entities.TallyResult{
		CandidateIDs: append([]string(nil), candidateIDs...),
		Matrix:       matrix,
		BallotCount:  len(ballots),
	}
	if len(ballots) == 0 || len(candidateIDs) == 0 {
		return result
	}
	result.Locked, result.Winners = LockPairs(candidateIDs, matrix)
	if len(result.Winners) > 0 {
		result.WinnerID = result.Winners[0]
	}
	result.Unique = len(result.Winners) == 1
	return result
}

type pair struct {
	winner int
	loser  int
	margin int
}

// LockPairs processes duels by descending margin. Duels sharing a margin are
// decided together: an edge is locked only if it neither closes a cycle with
// edges locked at larger margins nor lies on a cycle among its equally strong
// peers. Ties therefore never depend on candidate order. The winners are the
// candidates without any incoming locked edge, in candidate order.
func LockPairs(candidateIDs []string, matrix [][]int) ([]entities.Duel, []string) {
	n := len(candidateIDs)
	pairs := make([]pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case matrix[i][j] > matrix[j][i]:
				pairs = append(pairs, pair{winner: i, loser: j, margin: matrix[i][j] - matrix[j][i]})
			case matrix[j][i] > matrix[i][j]:
				pairs = append(pairs, pair{winner: j, loser: i, margin: matrix[j][i] - matrix[i][j]})
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		if pairs[a].margin != pairs[b].margin {
			return pairs[a].margin > pairs[b].margin
		}
		if pairs[a].winner != pairs[b].winner {
			return pairs[a].winner < pairs[b].winner
		}
		return pairs[a].loser < pairs[b].loser
	})

	locked := newGraph(n)
	duels := make([]entities.Duel, 0, len(pairs))
	for start := 0; start < len(pairs); {
		end := start
		for end < len(pairs) && pairs[end].margin == pairs[start].margin {
			end++
		}

		admissible := make([]pair, 0, end-start)
		for _, p := range pairs[start:end] {
			if !locked.reaches(p.loser, p.winner) {
				admissible = append(admissible, p)
			}
		}
		candidate := locked.clone()
		for _, p := range admissible {
			candidate[p.winner][p.loser] = true
		}
		accepted := make([]pair, 0, len(admissible))
		for _, p := range admissible {
			if !candidate.reaches(p.loser, p.winner) {
				accepted = append(accepted, p)
			}
		}
		for _, p := range accepted {
			locked[p.winner][p.loser] = true
			duels = append(duels, entities.Duel{
				WinnerID: candidateIDs[p.winner],
				LoserID:  candidateIDs[p.loser],
				Margin:   p.margin,
			})
		}
		start = end
	}

	winners := make([]string, 0, 1)
	for j := 0; j < n; j++ {
		beaten := false
		for i := 0; i < n; i++ {
			if locked[i][j] {
				beaten = true
				break
			}
		}
		if !beaten {
			winners = append(winners, candidateIDs[j])
		}
	}
	return duels, winners
}

type graph [][]bool

func newGraph(n int) graph {
	g := make(graph, n)
	for i := range g {
		g[i] = make([]bool, n)
	}
	return g
}

func (g graph) clone() graph {
	c := make(graph, len(g))
	for i, row := range g {
		c[i] = append([]bool(nil), row...)
	}
	return c
}

func (g graph) reaches(from int, to int) bool {
	if from == to {
		return true
	}
	visited := make([]bool, len(g))
	queue := []int{from}
	visited[from] = true
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for next, edge := range g[node] {
			if !edge || visited[next] {
				continue
			}
			if next == to {
				return true
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

func newMatrix(n int) [][]int {
	matrix := make([][]int, n)
	for i := range matrix {
		matrix[i] = make([]int, n)
	}
	return matrix
}
