package vector

import (
	"math"
	"math/rand"
	"sort"
)

const (
	kmeansSeed     = 42
	kmeansMaxIters = 100
)

// Clusters partitions all current vectors into at most numClusters
// groups using k-means with a fixed seed, so repeated calls at fixed
// index state return the same partition. numClusters is clamped to the
// vector count; an empty index returns an empty mapping. Members are
// sorted by importance score descending.
func (x *Index) Clusters(numClusters int) map[int][]ClusterItem {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.vectors) == 0 || numClusters <= 0 {
		return map[int][]ClusterItem{}
	}
	if numClusters > len(x.vectors) {
		numClusters = len(x.vectors)
	}

	// Deterministic ordering before seeding makes the whole run
	// reproducible regardless of map iteration order.
	hashes := make([]string, 0, len(x.vectors))
	for hash := range x.vectors {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	vectors := make([][]float32, len(hashes))
	for i, hash := range hashes {
		vectors[i] = x.vectors[hash]
	}

	labels := kmeans(vectors, numClusters)

	clusters := make(map[int][]ClusterItem)
	for i, label := range labels {
		m, ok := x.metadata[hashes[i]]
		if !ok {
			continue
		}
		clusters[label] = append(clusters[label], ClusterItem{
			ContentHash:     m.ContentHash,
			Title:           m.Title,
			Source:          m.Source,
			Category:        m.Category,
			ImportanceScore: m.ImportanceScore,
		})
	}

	for label := range clusters {
		members := clusters[label]
		sort.Slice(members, func(i, j int) bool {
			if members[i].ImportanceScore != members[j].ImportanceScore {
				return members[i].ImportanceScore > members[j].ImportanceScore
			}
			return members[i].ContentHash < members[j].ContentHash
		})
	}

	return clusters
}

// kmeans runs Lloyd's algorithm over the vectors and returns a cluster
// label per vector.
func kmeans(vectors [][]float32, k int) []int {
	rng := rand.New(rand.NewSource(kmeansSeed))

	// Initial centroids: k distinct vectors picked by seeded shuffle.
	order := rng.Perm(len(vectors))
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = toFloat64(vectors[order[i]])
	}

	labels := make([]int, len(vectors))
	for iter := 0; iter < kmeansMaxIters; iter++ {
		changed := false

		for i, vector := range vectors {
			best := nearestCentroid(vector, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}

		if !changed && iter > 0 {
			break
		}

		// Recompute centroids as member means; an emptied centroid
		// keeps its previous position.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float64, len(vectors[0]))
		}
		for i, vector := range vectors {
			label := labels[i]
			counts[label]++
			for d, v := range vector {
				sums[label][d] += float64(v)
			}
		}
		for i := 0; i < k; i++ {
			if counts[i] == 0 {
				continue
			}
			for d := range sums[i] {
				centroids[i][d] = sums[i][d] / float64(counts[i])
			}
		}
	}

	return labels
}

func nearestCentroid(vector []float32, centroids [][]float64) int {
	best := 0
	bestDist := math.MaxFloat64
	for i, centroid := range centroids {
		var dist float64
		for d, v := range vector {
			diff := float64(v) - centroid[d]
			dist += diff * diff
		}
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

func toFloat64(vector []float32) []float64 {
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = float64(v)
	}
	return out
}
