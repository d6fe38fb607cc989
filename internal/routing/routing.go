// Package routing plans visit orders for pickup and delivery runs.
package routing

import (
	"sort"

	"github.com/SainandaG/badmintion-stringing/internal/geo"
)

// ShortestRoute returns a distance-minimizing visit order over points for a
// single vehicle that starts at index 0. The result is a permutation of all
// indices beginning with 0; inputs of length 0 or 1 return the identity
// order.
//
// The route is built greedily nearest-neighbor and then improved with 2-opt
// until no crossing segments remain.
func ShortestRoute(points []geo.Point) []int {
	n := len(points)
	route := make([]int, n)
	for i := range route {
		route[i] = i
	}
	if n <= 2 {
		return route
	}

	dist := distanceMatrix(points)

	route = nearestNeighbor(dist)
	twoOpt(route, dist)
	return route
}

// RouteDistance sums the leg distances of a route over points, in km.
func RouteDistance(points []geo.Point, route []int) float64 {
	total := 0.0
	for i := 1; i < len(route); i++ {
		total += geo.Haversine(points[route[i-1]], points[route[i]])
	}
	return total
}

// Stop is a destination with its index into the caller's own slice.
type Stop struct {
	Index    int
	Point    geo.Point
	Distance float64
}

// SortByDistance orders stops by haversine distance from an origin,
// nearest first. Ties keep the input order.
func SortByDistance(origin geo.Point, points []geo.Point) []Stop {
	stops := make([]Stop, len(points))
	for i, p := range points {
		stops[i] = Stop{
			Index:    i,
			Point:    p,
			Distance: geo.Haversine(origin, p),
		}
	}

	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].Distance < stops[j].Distance
	})
	return stops
}

func distanceMatrix(points []geo.Point) [][]float64 {
	n := len(points)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = geo.Haversine(points[i], points[j])
			}
		}
	}
	return dist
}

func nearestNeighbor(dist [][]float64) []int {
	n := len(dist)
	route := make([]int, 0, n)
	visited := make([]bool, n)

	current := 0
	route = append(route, current)
	visited[current] = true

	for len(route) < n {
		next := -1
		best := 0.0
		for candidate := 0; candidate < n; candidate++ {
			if visited[candidate] {
				continue
			}
			if next == -1 || dist[current][candidate] < best {
				next = candidate
				best = dist[current][candidate]
			}
		}
		route = append(route, next)
		visited[next] = true
		current = next
	}

	return route
}

// twoOpt repeatedly reverses route segments while doing so shortens the
// route. Index 0 is pinned as the start.
func twoOpt(route []int, dist [][]float64) {
	n := len(route)
	improved := true
	for improved {
		improved = false
		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				delta := swapDelta(route, dist, i, j)
				if delta < -1e-12 {
					reverse(route, i, j)
					improved = true
				}
			}
		}
	}
}

// swapDelta is the route length change from reversing route[i..j].
func swapDelta(route []int, dist [][]float64, i, j int) float64 {
	a, b := route[i-1], route[i]
	c := route[j]

	removed := dist[a][b]
	added := dist[a][c]
	if j+1 < len(route) {
		d := route[j+1]
		removed += dist[c][d]
		added += dist[b][d]
	}
	return added - removed
}

func reverse(route []int, i, j int) {
	for i < j {
		route[i], route[j] = route[j], route[i]
		i++
		j--
	}
}
