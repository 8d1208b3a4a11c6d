package model

import "fmt"

type SortField int

const (
	SortBySymbol SortField = iota
	SortByShares
	SortByPrice
	SortByCost
	SortByValue
	SortByGain
	SortByGainPercent
)

type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

func ParseSortField(s string) (SortField, error) {
	switch s {
	case "symbol":
		return SortBySymbol, nil
	case "shares":
		return SortByShares, nil
	case "price":
		return SortByPrice, nil
	case "cost":
		return SortByCost, nil
	case "value":
		return SortByValue, nil
	case "gain":
		return SortByGain, nil
	case "gainPercent":
		return SortByGainPercent, nil
	}
	return 0, fmt.Errorf("unknown sort field %q", s)
}

func ParseSortDirection(s string) (SortDirection, error) {
	switch s {
	case "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	}
	return 0, fmt.Errorf("unknown sort direction %q", s)
}
