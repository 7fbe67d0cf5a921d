// Copyright 2024 The CP-Expand Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cpmodel is the constraint-IR and domain-arithmetic library the
// presolve expansion stage builds on: integer variables with interval-set
// domains, linear expressions, and a tagged-variant constraint record.
package cpmodel

import (
	"fmt"
	"math"
	"sort"
)

// ClosedInterval stores the closed interval `[Start,End]`. If `Start` is greater
// than `End`, the interval is considered empty.
type ClosedInterval struct {
	Start int64
	End   int64
}

// CapAdd adds `a` and `b`, saturating at math.MinInt64/math.MaxInt64 on overflow
// instead of wrapping.
func CapAdd(a, b int64) int64 {
	if a == math.MinInt64 || a == math.MaxInt64 {
		return a
	}
	if b == math.MinInt64 || b == math.MaxInt64 {
		return b
	}
	s := a + b
	if b < 0 && s > a {
		return math.MinInt64
	}
	if b > 0 && s < a {
		return math.MaxInt64
	}
	return s
}

// CapSub subtracts `b` from `a`, saturating on overflow.
func CapSub(a, b int64) int64 {
	if b == math.MinInt64 {
		return CapAdd(a, math.MaxInt64)
	}
	return CapAdd(a, -b)
}

// CapProd multiplies `a` and `b`, saturating at math.MinInt64/math.MaxInt64 on
// overflow instead of wrapping.
func CapProd(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a == math.MinInt64 || a == math.MaxInt64 || b == math.MinInt64 || b == math.MaxInt64 {
		if (a < 0) == (b < 0) {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	p := a * b
	if p/b != a {
		if (a < 0) == (b < 0) {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return p
}

func checkOverflowAndAdd(i, delta int64) int64 {
	return CapAdd(i, delta)
}

// Offset adds an offset to both `Start` and `End` of the ClosedInterval `c`. If
// `Start` equals math.MinInt64 or `End` equals math.MaxInt64, that endpoint
// represents an unbounded domain and the offset does not move it. Both
// endpoints are clamped at math.MinInt64 and math.MaxInt64.
func (c ClosedInterval) Offset(delta int64) ClosedInterval {
	return ClosedInterval{checkOverflowAndAdd(c.Start, delta), checkOverflowAndAdd(c.End, delta)}
}

func (c ClosedInterval) size() int64 {
	if c.Start > c.End {
		return 0
	}
	return CapAdd(CapSub(c.End, c.Start), 1)
}

// Domain stores an ordered list of ClosedIntervals. This represents any subset
// of `[math.MinInt64,math.MaxInt64]`. This type can be used to represent such a
// set efficiently as a sorted and non-adjacent list of intervals, as long as the
// size of such a list stays reasonable.
type Domain struct {
	intervals []ClosedInterval
}

// complexityRelaxationThreshold bounds the number of intervals a domain may
// carry before RelaxIfTooComplex collapses it to its bounding interval.
const complexityRelaxationThreshold = 100

// joinIntervals sorts the intervals in `d` and merges two consecutive intervals
// if they overlap or the start of the second is exactly one more than the end of
// the first. An interval whose `Start` is greater than its `End` is dropped as
// empty.
func (d *Domain) joinIntervals() {
	var itvs []ClosedInterval
	for _, v := range d.intervals {
		if v.Start <= v.End {
			itvs = append(itvs, v)
		}
	}
	d.intervals = itvs
	if len(d.intervals) == 0 {
		return
	}
	sort.Slice(d.intervals, func(i, j int) bool {
		if d.intervals[i].Start != d.intervals[j].Start {
			return d.intervals[i].Start < d.intervals[j].Start
		}
		return d.intervals[i].End < d.intervals[j].End
	})
	newIntervals := []ClosedInterval{d.intervals[0]}
	for i := 1; i < len(d.intervals); i++ {
		lastInt := &newIntervals[len(newIntervals)-1]
		if lastInt.End == math.MaxInt64 || CapAdd(lastInt.End, 1) >= d.intervals[i].Start {
			if lastInt.End < d.intervals[i].End {
				lastInt.End = d.intervals[i].End
			}
		} else {
			newIntervals = append(newIntervals, d.intervals[i])
		}
	}
	d.intervals = newIntervals
}

// NewEmptyDomain creates an empty Domain.
func NewEmptyDomain() Domain {
	return Domain{}
}

// NewSingleDomain creates a new singleton domain `{val}`.
func NewSingleDomain(val int64) Domain {
	return Domain{[]ClosedInterval{{val, val}}}
}

// NewDomain creates a new domain of a single interval `[left,right]`.
// If `left > right`, an empty domain is returned.
func NewDomain(left, right int64) Domain {
	if left > right {
		return NewEmptyDomain()
	}
	return Domain{[]ClosedInterval{{left, right}}}
}

// FromValues creates a new domain from `values`. `values` need not be sorted
// and may repeat.
func FromValues(values []int64) Domain {
	var d Domain
	for _, v := range values {
		d.intervals = append(d.intervals, ClosedInterval{v, v})
	}
	d.joinIntervals()
	return d
}

// FromIntervals creates a domain from the union of the unordered `intervals`.
// An interval whose `Start` is greater than its `End` is considered empty.
func FromIntervals(intervals []ClosedInterval) Domain {
	itvs := make([]ClosedInterval, len(intervals))
	copy(itvs, intervals)
	domain := Domain{itvs}
	domain.joinIntervals()
	return domain
}

// FromFlatIntervals creates a new domain from a flattened list of interval
// bounds. Returns an error if the length of `values` is not even.
func FromFlatIntervals(values []int64) (Domain, error) {
	if len(values) == 0 {
		return NewEmptyDomain(), nil
	}
	if len(values)%2 != 0 {
		return NewEmptyDomain(), fmt.Errorf("len(values)=%v must be a multiple of 2", len(values))
	}
	var intervals []ClosedInterval
	for i := 1; i < len(values); i += 2 {
		intervals = append(intervals, ClosedInterval{values[i-1], values[i]})
	}
	d := Domain{intervals}
	d.joinIntervals()
	return d, nil
}

// FlattenedIntervals returns the flattened list of interval bounds of the
// domain. For example, the domain `[0,2][5,5][9,10]` returns `[0,2,5,5,9,10]`.
func (d Domain) FlattenedIntervals() []int64 {
	var result []int64
	for _, i := range d.intervals {
		result = append(result, i.Start, i.End)
	}
	return result
}

// Intervals returns a copy of the domain's sorted, non-overlapping intervals.
func (d Domain) Intervals() []ClosedInterval {
	out := make([]ClosedInterval, len(d.intervals))
	copy(out, d.intervals)
	return out
}

// Min returns the minimum value of the domain, and false if the domain is empty.
func (d Domain) Min() (int64, bool) {
	if len(d.intervals) == 0 {
		return 0, false
	}
	return d.intervals[0].Start, true
}

// Max returns the maximum value of the domain, and false if the domain is empty.
func (d Domain) Max() (int64, bool) {
	if len(d.intervals) == 0 {
		return 0, false
	}
	return d.intervals[len(d.intervals)-1].End, true
}

// IsEmpty reports whether the domain contains no value.
func (d Domain) IsEmpty() bool {
	return len(d.intervals) == 0
}

// IsFixed reports whether the domain contains exactly one value.
func (d Domain) IsFixed() bool {
	return len(d.intervals) == 1 && d.intervals[0].Start == d.intervals[0].End
}

// FixedValue returns the single value of a fixed domain. The result is
// unspecified if the domain is not fixed; callers should check IsFixed first.
func (d Domain) FixedValue() int64 {
	if len(d.intervals) == 0 {
		return 0
	}
	return d.intervals[0].Start
}

// Size returns the number of values in the domain, saturating at math.MaxInt64.
func (d Domain) Size() int64 {
	var total int64
	for _, i := range d.intervals {
		total = CapAdd(total, i.size())
	}
	return total
}

// Contains reports whether `v` belongs to the domain.
func (d Domain) Contains(v int64) bool {
	lo, hi := 0, len(d.intervals)
	for lo < hi {
		mid := (lo + hi) / 2
		if d.intervals[mid].End < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(d.intervals) && d.intervals[lo].Start <= v
}

// Values enumerates every value in the domain in ascending order. Intended for
// domains whose Size is small; callers should check Size before calling this on
// an arbitrary domain.
func (d Domain) Values() []int64 {
	var out []int64
	for _, i := range d.intervals {
		for v := i.Start; v <= i.End; v++ {
			out = append(out, v)
			if v == math.MaxInt64 {
				break
			}
		}
	}
	return out
}

// IntersectionWith returns the intersection of `d` and `other`.
func (d Domain) IntersectionWith(other Domain) Domain {
	var result []ClosedInterval
	i, j := 0, 0
	for i < len(d.intervals) && j < len(other.intervals) {
		a, b := d.intervals[i], other.intervals[j]
		lo := a.Start
		if b.Start > lo {
			lo = b.Start
		}
		hi := a.End
		if b.End < hi {
			hi = b.End
		}
		if lo <= hi {
			result = append(result, ClosedInterval{lo, hi})
		}
		if a.End < b.End {
			i++
		} else {
			j++
		}
	}
	return FromIntervals(result)
}

// UnionWith returns the union of `d` and `other`.
func (d Domain) UnionWith(other Domain) Domain {
	merged := make([]ClosedInterval, 0, len(d.intervals)+len(other.intervals))
	merged = append(merged, d.intervals...)
	merged = append(merged, other.intervals...)
	return FromIntervals(merged)
}

// Complement returns the complement of `d` within `[math.MinInt64,math.MaxInt64]`.
func (d Domain) Complement() Domain {
	if len(d.intervals) == 0 {
		return NewDomain(math.MinInt64, math.MaxInt64)
	}
	var result []ClosedInterval
	if d.intervals[0].Start > math.MinInt64 {
		result = append(result, ClosedInterval{math.MinInt64, d.intervals[0].Start - 1})
	}
	for i := 1; i < len(d.intervals); i++ {
		result = append(result, ClosedInterval{d.intervals[i-1].End + 1, d.intervals[i].Start - 1})
	}
	if last := d.intervals[len(d.intervals)-1].End; last < math.MaxInt64 {
		result = append(result, ClosedInterval{last + 1, math.MaxInt64})
	}
	return FromIntervals(result)
}

// Negation returns the domain of `-v` for every `v` in `d`.
func (d Domain) Negation() Domain {
	result := make([]ClosedInterval, len(d.intervals))
	for i, itv := range d.intervals {
		result[i] = ClosedInterval{negateSaturating(itv.End), negateSaturating(itv.Start)}
	}
	return FromIntervals(result)
}

func negateSaturating(v int64) int64 {
	if v == math.MinInt64 {
		return math.MaxInt64
	}
	if v == math.MaxInt64 {
		return math.MinInt64
	}
	return -v
}

// AdditionWith returns the set `{a + b | a in d, b in other}`, i.e. the
// Minkowski sum of the two interval sets.
func (d Domain) AdditionWith(other Domain) Domain {
	var result []ClosedInterval
	for _, a := range d.intervals {
		for _, b := range other.intervals {
			result = append(result, ClosedInterval{CapAdd(a.Start, b.Start), CapAdd(a.End, b.End)})
		}
	}
	return FromIntervals(result)
}

// MultiplicationBy returns the domain `{v * coeff | v in d}`.
func (d Domain) MultiplicationBy(coeff int64) Domain {
	if coeff == 0 {
		if d.IsEmpty() {
			return NewEmptyDomain()
		}
		return NewSingleDomain(0)
	}
	result := make([]ClosedInterval, len(d.intervals))
	for i, itv := range d.intervals {
		lo, hi := CapProd(itv.Start, coeff), CapProd(itv.End, coeff)
		if coeff < 0 {
			lo, hi = hi, lo
		}
		result[i] = ClosedInterval{lo, hi}
	}
	return FromIntervals(result)
}

// InverseMultiplicationBy returns `{v | v*coeff in d}`, i.e. the values that map
// into `d` when scaled by `coeff`. `coeff` must be non-zero.
func (d Domain) InverseMultiplicationBy(coeff int64) Domain {
	if coeff == 0 {
		return NewEmptyDomain()
	}
	var values []int64
	for _, itv := range d.intervals {
		lo, hi := itv.Start, itv.End
		for v := lo; v <= hi; v++ {
			if v%coeff == 0 {
				values = append(values, v/coeff)
			}
			if v == math.MaxInt64 {
				break
			}
		}
	}
	return FromValues(values)
}

// ContinuousMultiplicationBy returns a continuous over-approximation of the set
// product `{a * b | a in d, b in other}`: the single interval spanning the
// extreme products of the two domains' bounds. This mirrors the overapproximate
// multiplication used to size freshly created product variables during integer
// modulo expansion (spec.md §4.3); it is not the exact cartesian product.
func (d Domain) ContinuousMultiplicationBy(other Domain) Domain {
	if d.IsEmpty() || other.IsEmpty() {
		return NewEmptyDomain()
	}
	aMin, _ := d.Min()
	aMax, _ := d.Max()
	bMin, _ := other.Min()
	bMax, _ := other.Max()
	corners := [4]int64{
		CapProd(aMin, bMin), CapProd(aMin, bMax),
		CapProd(aMax, bMin), CapProd(aMax, bMax),
	}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return NewDomain(lo, hi)
}

// PositiveDivisionBySuperset returns an envelope domain for `expr / divisor`
// (truncating toward zero, as the int_div constraint does) given that `expr`'s
// values lie in `d` and the divisor's values lie in `divisor`. `divisor` must
// not contain 0.
func (d Domain) PositiveDivisionBySuperset(divisor Domain) Domain {
	if d.IsEmpty() || divisor.IsEmpty() {
		return NewEmptyDomain()
	}
	eMin, _ := d.Min()
	eMax, _ := d.Max()
	mMin, _ := divisor.Min()
	mMax, _ := divisor.Max()
	candidates := []int64{mMin, mMax}
	if mMin < 0 && mMax > 0 {
		candidates = append(candidates, -1, 1)
	} else if mMin == 0 {
		candidates = append(candidates, 1)
	} else if mMax == 0 {
		candidates = append(candidates, -1)
	}
	lo, hi := int64(math.MaxInt64), int64(math.MinInt64)
	for _, m := range candidates {
		if m == 0 {
			continue
		}
		for _, e := range []int64{eMin, eMax} {
			q := e / m
			if q < lo {
				lo = q
			}
			if q > hi {
				hi = q
			}
		}
	}
	if lo > hi {
		return NewEmptyDomain()
	}
	return NewDomain(lo, hi)
}

// PositiveModuloBySuperset returns an envelope domain for `expr % modulus`
// given that `expr`'s values lie in `d` and the modulus' values lie in
// `modulus`. The remainder is bounded in magnitude by the modulus and keeps the
// sign range of `expr`.
func (d Domain) PositiveModuloBySuperset(modulus Domain) Domain {
	if d.IsEmpty() || modulus.IsEmpty() {
		return NewEmptyDomain()
	}
	mMin, _ := modulus.Min()
	mMax, _ := modulus.Max()
	maxAbs := absSaturating(mMin)
	if a := absSaturating(mMax); a > maxAbs {
		maxAbs = a
	}
	if maxAbs == 0 {
		return NewEmptyDomain()
	}
	bound := CapSub(maxAbs, 1)
	envelope := NewDomain(-bound, bound)
	eMin, _ := d.Min()
	eMax, _ := d.Max()
	if eMin >= 0 {
		envelope = envelope.IntersectionWith(NewDomain(0, math.MaxInt64))
	} else if eMax <= 0 {
		envelope = envelope.IntersectionWith(NewDomain(math.MinInt64, 0))
	}
	return envelope
}

func absSaturating(v int64) int64 {
	if v < 0 {
		return negateSaturating(v)
	}
	return v
}

// RelaxIfTooComplex returns `d` unchanged if it has a reasonable number of
// intervals, or its bounding interval `[Min,Max]` otherwise. Used before
// computing reachable-value supersets for cheap structural checks (spec.md
// §4.11) so that a pathologically fragmented domain cannot blow up the
// computation.
func (d Domain) RelaxIfTooComplex() Domain {
	if len(d.intervals) <= complexityRelaxationThreshold {
		return d
	}
	lo, _ := d.Min()
	hi, _ := d.Max()
	return NewDomain(lo, hi)
}

// String renders the domain as a list of intervals, e.g. "[0,2][5,5][9,10]".
func (d Domain) String() string {
	if len(d.intervals) == 0 {
		return "{}"
	}
	s := ""
	for _, i := range d.intervals {
		if i.Start == i.End {
			s += fmt.Sprintf("[%d]", i.Start)
		} else {
			s += fmt.Sprintf("[%d,%d]", i.Start, i.End)
		}
	}
	return s
}
