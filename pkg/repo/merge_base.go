package repo

import (
	"container/heap"
	"fmt"

	"github.com/odvcencio/gotrev/pkg/object"
)

// maxMergeBaseSteps bounds the number of commits visited by one MergeBase
// call. Tests may lower it.
var maxMergeBaseSteps = 1_000_000

// commitGraph caches commits and their generation numbers for one
// traversal. A root commit has generation 1.
type commitGraph struct {
	r           *Repo
	commits     map[object.Hash]*object.CommitObj
	generations map[object.Hash]uint64
}

func newCommitGraph(r *Repo) *commitGraph {
	return &commitGraph{
		r:           r,
		commits:     make(map[object.Hash]*object.CommitObj),
		generations: make(map[object.Hash]uint64),
	}
}

func (g *commitGraph) commit(h object.Hash) (*object.CommitObj, error) {
	if c, ok := g.commits[h]; ok {
		return c, nil
	}
	c, err := g.r.Store.ReadCommit(h)
	if err != nil {
		return nil, fmt.Errorf("merge base: read commit %s: %w", h, err)
	}
	g.commits[h] = c
	return c, nil
}

// generation computes the generation number of h iteratively so deep
// histories do not grow the goroutine stack.
func (g *commitGraph) generation(h object.Hash) (uint64, error) {
	if gen, ok := g.generations[h]; ok {
		return gen, nil
	}
	// A commit is expanded once its parents have been pushed. Meeting an
	// expanded commit that has no generation yet means it is on the
	// current path.
	expanded := make(map[object.Hash]bool)
	stack := []object.Hash{h}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		if _, ok := g.generations[cur]; ok {
			stack = stack[:len(stack)-1]
			continue
		}
		c, err := g.commit(cur)
		if err != nil {
			return 0, err
		}
		if !expanded[cur] {
			expanded[cur] = true
			for _, p := range c.Parents {
				if _, ok := g.generations[p]; ok {
					continue
				}
				if expanded[p] {
					return 0, fmt.Errorf("merge base: commit graph cycle at %s", p)
				}
				stack = append(stack, p)
			}
			continue
		}
		var maxParent uint64
		for _, p := range c.Parents {
			maxParent = max(maxParent, g.generations[p])
		}
		g.generations[cur] = maxParent + 1
		stack = stack[:len(stack)-1]
	}
	return g.generations[h], nil
}

// MergeBase returns the best common ancestor of commits a and b: the one
// with the highest generation number, ties broken by the smaller hash. The
// boolean is false when the histories are unrelated.
func (r *Repo) MergeBase(a, b object.Hash) (object.Hash, bool, error) {
	if a == b {
		if _, err := r.Store.ReadCommit(a); err != nil {
			return "", false, fmt.Errorf("merge base: %w", err)
		}
		return a, true, nil
	}

	g := newCommitGraph(r)
	genA, err := g.generation(a)
	if err != nil {
		return "", false, err
	}
	genB, err := g.generation(b)
	if err != nil {
		return "", false, err
	}

	const (
		fromA = 1 << iota
		fromB
	)
	seen := map[object.Hash]int{a: fromA, b: fromB}
	queue := &generationQueue{{a, genA}, {b, genB}}
	heap.Init(queue)

	var (
		best    object.Hash
		bestGen uint64
	)
	for steps := 0; queue.Len() > 0; steps++ {
		if steps >= maxMergeBaseSteps {
			return "", false, fmt.Errorf("merge base: traversal exceeded %d steps", maxMergeBaseSteps)
		}
		item := heap.Pop(queue).(queuedCommit)
		if best != "" && item.generation < bestGen {
			break
		}
		flags := seen[item.hash]
		if flags == fromA|fromB {
			if best == "" || item.generation > bestGen || (item.generation == bestGen && item.hash < best) {
				best, bestGen = item.hash, item.generation
			}
			continue
		}

		c, err := g.commit(item.hash)
		if err != nil {
			return "", false, err
		}
		for _, p := range c.Parents {
			old := seen[p]
			if old|flags == old {
				continue
			}
			seen[p] = old | flags
			gen, err := g.generation(p)
			if err != nil {
				return "", false, err
			}
			heap.Push(queue, queuedCommit{p, gen})
		}
	}
	return best, best != "", nil
}

type queuedCommit struct {
	hash       object.Hash
	generation uint64
}

// generationQueue pops the highest generation first.
type generationQueue []queuedCommit

func (q generationQueue) Len() int { return len(q) }

func (q generationQueue) Less(i, j int) bool {
	if q[i].generation == q[j].generation {
		return q[i].hash < q[j].hash
	}
	return q[i].generation > q[j].generation
}

func (q generationQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *generationQueue) Push(x any) { *q = append(*q, x.(queuedCommit)) }

func (q *generationQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}
