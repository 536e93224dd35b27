package engine

import "github.com/dev-team-404/slea-ssem-sub001/internal/domain"

// SpecialistBadge is awarded on top of the grade badge to Elite users.
const SpecialistBadge = "specialist badge"

var gradeBadges = map[domain.Grade]string{
	domain.GradeBeginner:             "starter badge",
	domain.GradeIntermediate:         "intermediate badge",
	domain.GradeIntermediateAdvanced: "intermediate-advanced badge",
	domain.GradeAdvanced:             "advanced badge",
	domain.GradeElite:                "elite badge",
}

// BadgeSpec names a badge a grade entitles its holder to.
type BadgeSpec struct {
	Name string
	Type domain.BadgeType
}

// BadgesFor lists the badges a grade earns. Unknown grades earn nothing.
func BadgesFor(grade domain.Grade) []BadgeSpec {
	name, ok := gradeBadges[grade]
	if !ok {
		return nil
	}
	specs := []BadgeSpec{{Name: name, Type: domain.BadgeTypeGrade}}
	if grade == domain.GradeElite {
		specs = append(specs, BadgeSpec{Name: SpecialistBadge, Type: domain.BadgeTypeSpecialist})
	}
	return specs
}
