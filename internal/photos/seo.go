package photos

import (
	"fmt"
	"strings"
	"time"
)

// SEOBaseName builds "ospreyexterior-<service>-<city>-<descriptor>-<type>-<yyyymmdd>-<uid>".
func SEOBaseName(service, city, descriptor, kind string, date time.Time, uid string) string {
	descPart := Slugify(firstNonEmpty(descriptor, service, "exterior"))
	cityPart := "unknown-city"
	if city != "" {
		cityPart = Slugify(city)
	}
	servicePart := "service"
	if service != "" {
		servicePart = Slugify(service)
	}
	return fmt.Sprintf("ospreyexterior-%s-%s-%s-%s-%s-%s",
		servicePart, cityPart, descPart, kind, date.Format("20060102"), uid)
}

// AltText describes a variant for screen readers and image search.
func AltText(names map[string]string, kind string, loc Location, service, descriptor string) string {
	serviceName, ok := names[service]
	if !ok {
		serviceName = names[ServiceUnknown]
	}
	if serviceName == "" {
		serviceName = "Exterior Service"
	}
	phrase := strings.ToLower(serviceName)
	if descriptor != "" {
		phrase = strings.ReplaceAll(descriptor, "-", " ")
	}
	locality := "local area"
	if loc.City != "" && loc.City != UnknownCity {
		locality = loc.City
		if loc.Region != "" {
			locality += ", " + loc.Region
		}
	}
	condition := "showing restored flow and clean surfaces after service"
	if kind == TypeBefore {
		condition = "showing debris and buildup before service"
	}
	return fmt.Sprintf("%s %s photo in %s highlighting %s %s.", serviceName, kind, locality, phrase, condition)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
