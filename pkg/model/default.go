package model

// Default returns a model with the pretrained weights shipped in the
// binary, used when no artifacts file is supplied. Weight signs follow the
// training run: longer history, more activity, and a healthier
// deposit/withdrawal ratio lower risk; volatile amounts and irregular
// transaction hours raise it.
func Default() *Model {
	m, err := New(Artifacts{
		Version:  "1.0.0",
		Features: FeatureNames,
		Weights: map[string]float64{
			"txn_count":              -0.34,
			"net_amount":             -0.29,
			"avg_amount":             -0.11,
			"amount_std":             0.23,
			"dwr":                    -0.27,
			"customer_duration_days": -0.31,
			"hour_mean":              0.04,
			"hour_std":               0.16,
		},
		Bias: -0.22,
		Scaler: Scaler{
			Mean: map[string]float64{
				"txn_count":              42.0,
				"net_amount":             2600.0,
				"avg_amount":             118.0,
				"amount_std":             175.0,
				"dwr":                    1.3,
				"customer_duration_days": 145.0,
				"hour_mean":              13.1,
				"hour_std":               3.4,
			},
			Std: map[string]float64{
				"txn_count":              36.0,
				"net_amount":             4100.0,
				"avg_amount":             190.0,
				"amount_std":             160.0,
				"dwr":                    1.6,
				"customer_duration_days": 118.0,
				"hour_mean":              2.9,
				"hour_std":               2.1,
			},
		},
	})
	if err != nil {
		// Static artifacts above are exercised in tests; this is unreachable.
		panic(err)
	}
	return m
}
