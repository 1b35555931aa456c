// Package fountain implements the codec's LT-style erasure code: XOR-based
// repair packets generated from a deterministic, seeded PRNG, and an
// iterative peeling decoder that reconstructs missing source chunks.
package fountain

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	codecerrors "github.com/nyxtape/vidcodec/internal/errors"
	"github.com/nyxtape/vidcodec/internal/log"
)

// DefaultRatio is the default ratio of repair packets to source packets.
const DefaultRatio = 0.3

// RepairPacket is an in-memory XOR-combined repair chunk. SourceIndices is
// never transmitted on the wire — both encoder and decoder rederive it
// from RepairIndex and the source count via GetRepairSources.
type RepairPacket struct {
	RepairIndex   uint32
	SourceIndices []int
	Data          []byte
}

// GetRepairSources deterministically derives the sorted set of distinct
// source indices covered by repair index r, out of n total sources.
// Encoder and decoder MUST produce identical results for the same (r, n).
func GetRepairSources(r uint32, n int) []int {
	if n <= 0 {
		return nil
	}

	if n == 1 {
		return []int{0}
	}

	gen := newPRNG(r)

	degree := 2 + int(gen.next()%uint32(min32(4, n-1)))
	if degree > n {
		degree = n
	}

	seen := make(map[int]struct{}, degree)
	for len(seen) < degree {
		idx := int(gen.next() % uint32(n))
		seen[idx] = struct{}{}
	}

	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

func min32(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// GenerateRepairPackets produces ceil(len(sources) * ratio) (minimum 1)
// repair packets by XOR-combining the source chunks each covers. sources
// must all share the same length (packet.MaxPayload, by contract).
// Generation for distinct repair indices is independent, so it runs with
// bounded parallelism via errgroup.
func GenerateRepairPackets(ctx context.Context, sources [][]byte, ratio float64) ([]RepairPacket, error) {
	n := len(sources)
	if n == 0 {
		return nil, nil
	}

	repairCount := int(ratioCeil(n, ratio))
	if repairCount < 1 {
		repairCount = 1
	}

	repairs := make([]RepairPacket, repairCount)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for r := 0; r < repairCount; r++ {
		r := r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			indices := GetRepairSources(uint32(r), n)
			data := make([]byte, len(sources[indices[0]]))
			for _, idx := range indices {
				xorInto(data, sources[idx])
			}

			repairs[r] = RepairPacket{
				RepairIndex:   uint32(r),
				SourceIndices: indices,
				Data:          data,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug("generated repair packets", log.Int("sourceCount", n), log.Int("repairCount", repairCount))
	return repairs, nil
}

func ratioCeil(n int, ratio float64) int {
	f := float64(n) * ratio
	i := int(f)
	if float64(i) < f {
		i++
	}
	return i
}

func xorInto(dst, src []byte) {
	for i := range dst {
		if i < len(src) {
			dst[i] ^= src[i]
		}
	}
}

// RecoverPackets iteratively peels repairs to reconstruct missing source
// chunks. sources has length n; a nil entry means absent. Recovered
// chunks are written back into sources in place. Returns the count of
// entries still nil after peeling converges — the caller decides whether
// that is fatal (see errors.NewUnrecoverableLossError).
func RecoverPackets(sources [][]byte, repairs []RepairPacket, packetSize int) int {
	for {
		recoveredThisPass := false

		for _, rp := range repairs {
			missing := -1
			missingCount := 0
			for _, idx := range rp.SourceIndices {
				if sources[idx] == nil {
					missingCount++
					missing = idx
				}
			}
			if missingCount != 1 {
				continue
			}

			recovered := make([]byte, packetSize)
			copy(recovered, rp.Data)
			for _, idx := range rp.SourceIndices {
				if idx == missing {
					continue
				}
				xorInto(recovered, sources[idx])
			}

			sources[missing] = recovered
			recoveredThisPass = true
		}

		if !recoveredThisPass {
			break
		}
	}

	absent := 0
	for _, s := range sources {
		if s == nil {
			absent++
		}
	}
	if absent > 0 {
		log.Debug("peeling decode terminated with unrecovered sources", log.Int("absent", absent))
	}
	return absent
}

// FirstMissingIndex returns the index of the first nil entry in sources,
// wrapped as an UnrecoverableLossError, or nil if none are missing.
func FirstMissingIndex(sources [][]byte) error {
	for i, s := range sources {
		if s == nil {
			return codecerrors.NewUnrecoverableLossError(i)
		}
	}
	return nil
}
