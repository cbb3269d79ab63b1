package alloc

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

type liveBlock struct {
	n    int
	seed byte
}

// requireDisjoint checks that no two live payloads overlap and every one is aligned.
func requireDisjoint(t *testing.T, a *Allocator, live map[Ptr]liveBlock) {
	t.Helper()
	ptrs := make([]Ptr, 0, len(live))
	for p := range live {
		ptrs = append(ptrs, p)
	}
	sort.Slice(ptrs, func(i, j int) bool { return ptrs[i] < ptrs[j] })
	for i, p := range ptrs {
		require.Zero(t, uint32(p)%8)
		if i > 0 {
			prev := ptrs[i-1]
			require.LessOrEqual(t, int(prev)+a.Size(prev), int(p), "payloads 0x%X and 0x%X overlap", uint32(prev), uint32(p))
		}
	}
}

func TestProperty_RandomOperations(t *testing.T) {
	for _, seed := range []int64{1, 42, 1337} {
		rng := rand.New(rand.NewSource(seed))
		a, _ := newTestAllocator(t)
		live := make(map[Ptr]liveBlock)
		var order []Ptr

		pick := func() (Ptr, int) {
			i := rng.Intn(len(order))
			return order[i], i
		}
		drop := func(i int) {
			order[i] = order[len(order)-1]
			order = order[:len(order)-1]
		}

		for step := 0; step < 3000; step++ {
			switch op := rng.Intn(10); {
			case op < 5 || len(order) == 0:
				n := rng.Intn(600)
				if rng.Intn(20) == 0 {
					n = 4096 + rng.Intn(8192)
				}
				p, err := a.Malloc(n)
				require.NoError(t, err, "step %d", step)
				if n == 0 {
					require.Equal(t, Nil, p)
					continue
				}
				_, dup := live[p]
				require.False(t, dup, "step %d: 0x%X handed out twice", step, uint32(p))
				s := byte(rng.Intn(256))
				fill(a, p, n, s)
				live[p] = liveBlock{n: n, seed: s}
				order = append(order, p)

			case op < 8:
				p, i := pick()
				lb := live[p]
				requirePattern(t, a, p, lb.n, lb.seed)
				a.Free(p)
				delete(live, p)
				drop(i)

			default:
				p, i := pick()
				lb := live[p]
				requirePattern(t, a, p, lb.n, lb.seed)
				n := rng.Intn(1000)
				q, err := a.Realloc(p, n)
				require.NoError(t, err, "step %d", step)
				delete(live, p)
				drop(i)
				if n == 0 {
					require.Equal(t, Nil, q)
					continue
				}
				require.NotEqual(t, p, q)
				keep := min(lb.n, n)
				requirePattern(t, a, q, keep, lb.seed)
				fill(a, q, n, lb.seed)
				live[q] = liveBlock{n: n, seed: lb.seed}
				order = append(order, q)
			}

			if step%100 == 0 {
				requireHeapOK(t, a)
				requireDisjoint(t, a, live)
			}
		}

		requireHeapOK(t, a)
		requireDisjoint(t, a, live)
		require.Equal(t, len(live), a.Stats().LiveBlocks)
		for p, lb := range live {
			requirePattern(t, a, p, lb.n, lb.seed)
			a.Free(p)
		}
		requireHeapOK(t, a)
		require.Len(t, listOrder(a), 1, "everything coalesces back into one block")
	}
}
