package models

import "gorm.io/gorm"

// Service is one entry of the school's service catalog (Integral, Meio
// período, ...).
type Service struct {
	gorm.Model
	Key    ServiceKey `gorm:"column:key;uniqueIndex"        json:"key"`
	Name   string     `gorm:"column:name;not null"          json:"name"`
	Active bool       `gorm:"column:active;default:true"    json:"active"`

	Values []ServiceValue `gorm:"foreignKey:ServiceID" json:"values,omitempty"`
}

func (Service) TableName() string { return "services" }

// ServiceValue is the price table row for a (service, year, grade) triple.
// All three tiers are integer cents; the list price doubles as the monthly
// amount of the standard contract plan.
type ServiceValue struct {
	gorm.Model
	ServiceID uint  `gorm:"column:service_id;index;uniqueIndex:uq_service_year_grade" json:"serviceId"`
	Year      int   `gorm:"column:year;index;uniqueIndex:uq_service_year_grade"       json:"year"`
	Grade     Grade `gorm:"column:grade;index;uniqueIndex:uq_service_year_grade"      json:"grade"`

	ListPriceCents     int64 `gorm:"column:list_price_cents;not null"     json:"listPriceCents"`
	PunctualPriceCents int64 `gorm:"column:punctual_price_cents;not null" json:"punctualPriceCents"`
	ReenrollPriceCents int64 `gorm:"column:reenroll_price_cents;not null" json:"reenrollPriceCents"`

	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (ServiceValue) TableName() string { return "service_values" }

// PriceFor returns the cents amount of the requested tier.
func (v ServiceValue) PriceFor(tier PriceTier) int64 {
	switch tier {
	case TierPunctual:
		return v.PunctualPriceCents
	case TierReenrollment:
		return v.ReenrollPriceCents
	default:
		return v.ListPriceCents
	}
}
