// Package power calculates the probability of drawing enough power and
// influence using the hypergeometric distribution.
package power

// Factorial returns n! as a float64. Values of n at most 170 stay within
// float64 range, far beyond any deck-sized input.
func Factorial(n int) float64 {
	if n <= 1 {
		return 1
	}
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

// Binomial returns the binomial coefficient C(n, k).
//
// It uses the multiplicative reduced form over min(k, n-k) factors in
// float64, which stays exact for every coefficient a 150-card deck can
// produce and degrades gracefully rather than overflowing for larger ones.
// Returns 0 when k > n or k < 0.
func Binomial(n, k int) float64 {
	if k > n || k < 0 {
		return 0
	}
	if k == 0 || k == n {
		return 1
	}
	if n-k < k {
		k = n - k
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result = result * float64(n-i) / float64(i+1)
	}
	return result
}

// Hypergeometric returns P(X = k): the probability of drawing exactly k
// successes in draws cards, without replacement, from a population of
// populationSize containing successesInPopulation successes.
//
// Combinatorially impossible inputs (k > K, k > n, or n-k > N-K) return 0
// without computing any coefficients.
func Hypergeometric(populationSize, successesInPopulation, draws, observedSuccesses int) float64 {
	if observedSuccesses > successesInPopulation {
		return 0
	}
	if observedSuccesses > draws {
		return 0
	}
	if draws-observedSuccesses > populationSize-successesInPopulation {
		return 0
	}

	numerator := Binomial(successesInPopulation, observedSuccesses) *
		Binomial(populationSize-successesInPopulation, draws-observedSuccesses)
	denominator := Binomial(populationSize, draws)
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// ProbabilityAtLeast returns P(X >= minSuccesses) under the hypergeometric
// distribution, summing the PMF from minSuccesses to min(draws, successes).
// Returns 1 when minSuccesses <= 0.
func ProbabilityAtLeast(populationSize, successesInPopulation, draws, minSuccesses int) float64 {
	if minSuccesses <= 0 {
		return 1
	}

	total := 0.0
	maxPossible := draws
	if successesInPopulation < maxPossible {
		maxPossible = successesInPopulation
	}
	for k := minSuccesses; k <= maxPossible; k++ {
		total += Hypergeometric(populationSize, successesInPopulation, draws, k)
	}
	return total
}
