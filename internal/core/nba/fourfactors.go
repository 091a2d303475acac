package nba

// FourFactors holds Dean Oliver's efficiency decomposition as fractions.
type FourFactors struct {
	EFG float64 `json:"efg"`
	TOV float64 `json:"tov"`
	ORB float64 `json:"orb"`
	FTR float64 `json:"ftr"`
}

var LeagueFourFactors = FourFactors{EFG: 0.540, TOV: 0.125, ORB: 0.245, FTR: 0.200}

func (f FourFactors) IsZero() bool { return f == FourFactors{} }

// Score weights the factors 40/25/20/15 with turnovers counted inversely.
func (f FourFactors) Score() float64 {
	return 0.40*f.EFG + 0.25*(1-f.TOV) + 0.20*f.ORB + 0.15*f.FTR
}

// EstimateFourFactors derives plausible factors from a points-per-100 rating
// by scaling each league average by the rating's relative efficiency.
func EstimateFourFactors(rating float64) FourFactors {
	if rating <= 0 {
		return LeagueFourFactors
	}
	d := rating/LeagueRating - 1
	return FourFactors{
		EFG: LeagueFourFactors.EFG + d*0.35,
		TOV: LeagueFourFactors.TOV - d*0.10,
		ORB: LeagueFourFactors.ORB + d*0.15,
		FTR: LeagueFourFactors.FTR + d*0.10,
	}
}
