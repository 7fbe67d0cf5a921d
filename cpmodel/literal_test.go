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

package cpmodel

import "testing"

func TestRefRoundTrip(t *testing.T) {
	for _, v := range []VarRef{0, 1, 5, 41} {
		neg := NegatedRef(v)
		if RefIsPositive(neg) {
			t.Errorf("RefIsPositive(NegatedRef(%d)) = true, want false", v)
		}
		if got := PositiveRef(neg); got != v {
			t.Errorf("PositiveRef(NegatedRef(%d)) = %d, want %d", v, got, v)
		}
		if got := NegatedRef(neg); got != v {
			t.Errorf("NegatedRef(NegatedRef(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestPositiveRefOnPositive(t *testing.T) {
	if got := PositiveRef(7); got != 7 {
		t.Errorf("PositiveRef(7) = %d, want 7", got)
	}
}
