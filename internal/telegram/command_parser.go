package telegram

import (
	"strconv"
	"strings"

	"github.com/agrosavjet/agro-bot/internal/domain"
)

// ParseWeatherArgs parses "/weather <location> [days]". A trailing integer is
// the day count; everything before it is the location. Zero days means "use
// the default".
func ParseWeatherArgs(args string) (location string, days int, err error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", 0, domain.ErrEmptyLocation
	}

	if len(fields) > 1 {
		if n, convErr := strconv.Atoi(fields[len(fields)-1]); convErr == nil {
			days = n
			fields = fields[:len(fields)-1]
		}
	}

	if len(fields) == 0 {
		return "", 0, domain.ErrEmptyLocation
	}

	return strings.Join(fields, " "), days, nil
}

// ParsePricesArgs parses "/prices <commodity> [market]". The first word is
// the commodity, the rest is the market name.
func ParsePricesArgs(args string) (commodity, market string, err error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", "", domain.ErrEmptyCommodity
	}

	commodity = fields[0]
	if len(fields) > 1 {
		market = strings.Join(fields[1:], " ")
	}
	return commodity, market, nil
}

// ParseAlertsArgs parses "/alerts <region> <crop,crop,...>".
func ParseAlertsArgs(args string) (region string, crops []string, err error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", nil, domain.ErrEmptyRegion
	}
	if len(fields) < 2 {
		return "", nil, domain.ErrNoCrops
	}

	region = fields[0]
	crops = splitCrops(strings.Join(fields[1:], " "))
	if len(crops) == 0 {
		return "", nil, domain.ErrNoCrops
	}
	return region, crops, nil
}

// ParseBriefingArgs parses "/briefing <location> <crop,crop,...>".
func ParseBriefingArgs(args string) (location string, crops []string, err error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", nil, domain.ErrEmptyLocation
	}
	if len(fields) < 2 {
		return "", nil, domain.ErrNoCrops
	}

	location = fields[0]
	crops = splitCrops(strings.Join(fields[1:], " "))
	if len(crops) == 0 {
		return "", nil, domain.ErrNoCrops
	}
	return location, crops, nil
}

func splitCrops(s string) []string {
	var crops []string
	for _, part := range strings.Split(s, ",") {
		if crop := strings.TrimSpace(part); crop != "" {
			crops = append(crops, crop)
		}
	}
	return crops
}
