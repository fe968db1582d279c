package fixtures

import "github.com/radieske/match-bid-platform/internal/bid-service/ledger"

// CatalogueTeam é um time do catálogo estático
type CatalogueTeam struct {
	Name      string
	ShortName string
}

// CatalogueMatch referencia os times pela sigla; o id vem do banco
type CatalogueMatch struct {
	Team1    string
	Team2    string
	Category ledger.Category
	Date     string
	Time     string
	Venue    string
	Series   string
}

var Teams = []CatalogueTeam{
	{"India", "IND"},
	{"Pakistan", "PAK"},
	{"Sri Lanka", "SL"},
	{"Scotland", "SCO"},
	{"Afghanistan", "AFG"},
	{"UAE", "UAE"},
	{"Oman", "OMA"},
	{"West Indies", "WI"},
	{"USA", "USA"},
	{"Canada", "CAN"},
	{"Australia", "AUS"},
	{"New Zealand", "NZ"},
	{"South Africa", "SA"},
	{"Namibia", "NAM"},
	{"Zimbabwe", "ZIM"},
	{"Ireland", "IRE"},
	{"England", "ENG"},
	{"Netherlands", "NED"},
	{"Italy", "ITA"},
	{"Nepal", "NEP"},
}

// WorldCup: fase de grupos, horários no fuso MATCH_TIMEZONE
var WorldCup = []CatalogueMatch{
	{"PAK", "NED", ledger.CategoryLeague, "2026-02-07", "11:00", "SSC, Colombo", ledger.DefaultSeries},
	{"WI", "SCO", ledger.CategoryLeague, "2026-02-07", "15:00", "Kolkata", ledger.DefaultSeries},
	{"IND", "USA", ledger.CategoryLeague, "2026-02-07", "19:00", "Mumbai", ledger.DefaultSeries},
	{"NZ", "AFG", ledger.CategoryLeague, "2026-02-08", "11:00", "Chennai", ledger.DefaultSeries},
	{"ENG", "NEP", ledger.CategoryLeague, "2026-02-08", "15:00", "Mumbai", ledger.DefaultSeries},
	{"SL", "IRE", ledger.CategoryLeague, "2026-02-08", "19:00", "Premadasa, Colombo", ledger.DefaultSeries},
	{"SCO", "ITA", ledger.CategoryLeague, "2026-02-09", "11:00", "Kolkata", ledger.DefaultSeries},
	{"ZIM", "OMA", ledger.CategoryLeague, "2026-02-09", "15:00", "SSC, Colombo", ledger.DefaultSeries},
	{"SA", "CAN", ledger.CategoryLeague, "2026-02-09", "19:00", "Ahmedabad", ledger.DefaultSeries},
	{"NED", "NAM", ledger.CategoryLeague, "2026-02-10", "11:00", "Delhi", ledger.DefaultSeries},
	{"NZ", "UAE", ledger.CategoryLeague, "2026-02-10", "15:00", "Chennai", ledger.DefaultSeries},
	{"PAK", "USA", ledger.CategoryLeague, "2026-02-10", "19:00", "SSC, Colombo", ledger.DefaultSeries},
	{"SA", "AFG", ledger.CategoryLeague, "2026-02-11", "11:00", "Ahmedabad", ledger.DefaultSeries},
	{"AUS", "IRE", ledger.CategoryLeague, "2026-02-11", "15:00", "Premadasa, Colombo", ledger.DefaultSeries},
	{"ENG", "WI", ledger.CategoryLeague, "2026-02-11", "19:00", "Mumbai", ledger.DefaultSeries},
	{"SL", "OMA", ledger.CategoryLeague, "2026-02-12", "11:00", "Kandy", ledger.DefaultSeries},
	{"NEP", "ITA", ledger.CategoryLeague, "2026-02-12", "15:00", "Mumbai", ledger.DefaultSeries},
	{"IND", "NAM", ledger.CategoryLeague, "2026-02-12", "19:00", "New Delhi", ledger.DefaultSeries},
	{"AUS", "ZIM", ledger.CategoryLeague, "2026-02-13", "11:00", "Premadasa, Colombo", ledger.DefaultSeries},
	{"CAN", "UAE", ledger.CategoryLeague, "2026-02-13", "15:00", "Delhi", ledger.DefaultSeries},
	{"USA", "NED", ledger.CategoryLeague, "2026-02-13", "19:00", "Chennai", ledger.DefaultSeries},
	{"IRE", "OMA", ledger.CategoryLeague, "2026-02-14", "11:00", "SSC, Colombo", ledger.DefaultSeries},
	{"ENG", "SCO", ledger.CategoryLeague, "2026-02-14", "15:00", "Kolkata", ledger.DefaultSeries},
	{"NZ", "SA", ledger.CategoryLeague, "2026-02-14", "19:00", "Ahmedabad", ledger.DefaultSeries},
	{"WI", "NEP", ledger.CategoryLeague, "2026-02-15", "11:00", "Mumbai", ledger.DefaultSeries},
	{"USA", "NAM", ledger.CategoryLeague, "2026-02-15", "15:00", "Chennai", ledger.DefaultSeries},
	{"IND", "PAK", ledger.CategoryLeague, "2026-02-15", "19:00", "Premadasa, Colombo", ledger.DefaultSeries},
	{"AFG", "UAE", ledger.CategoryLeague, "2026-02-16", "11:00", "Delhi", ledger.DefaultSeries},
	{"ENG", "ITA", ledger.CategoryLeague, "2026-02-16", "15:00", "Kolkata", ledger.DefaultSeries},
	{"AUS", "SL", ledger.CategoryLeague, "2026-02-16", "19:00", "Kandy", ledger.DefaultSeries},
	{"NZ", "CAN", ledger.CategoryLeague, "2026-02-17", "11:00", "Chennai", ledger.DefaultSeries},
	{"IRE", "ZIM", ledger.CategoryLeague, "2026-02-17", "15:00", "Kandy", ledger.DefaultSeries},
	{"SCO", "NEP", ledger.CategoryLeague, "2026-02-17", "19:00", "Mumbai", ledger.DefaultSeries},
	{"SA", "UAE", ledger.CategoryLeague, "2026-02-18", "11:00", "Delhi", ledger.DefaultSeries},
	{"PAK", "NAM", ledger.CategoryLeague, "2026-02-18", "15:00", "SSC, Colombo", ledger.DefaultSeries},
	{"IND", "NED", ledger.CategoryLeague, "2026-02-18", "19:00", "Ahmedabad", ledger.DefaultSeries},
	{"WI", "ITA", ledger.CategoryLeague, "2026-02-19", "11:00", "Kolkata", ledger.DefaultSeries},
	{"SL", "ZIM", ledger.CategoryLeague, "2026-02-19", "15:00", "Premadasa, Colombo", ledger.DefaultSeries},
	{"AFG", "CAN", ledger.CategoryLeague, "2026-02-19", "19:00", "Chennai", ledger.DefaultSeries},
	{"AUS", "OMA", ledger.CategoryLeague, "2026-02-20", "19:00", "Kandy", ledger.DefaultSeries},
}
