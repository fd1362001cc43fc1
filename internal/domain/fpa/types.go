// Package fpa holds the Function Point Analysis domain model: the polymorphic
// Function union and the Project/Frontier hierarchy that owns it.
package fpa

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FunctionType tags the five Function variants.
type FunctionType string

const (
	// TypeALI is an Internal Logical File (data function).
	TypeALI FunctionType = "ALI"
	// TypeAIE is an External Interface File (data function).
	TypeAIE FunctionType = "AIE"
	// TypeEE is an External Input (transactional function).
	TypeEE FunctionType = "EE"
	// TypeCE is an External Inquiry (transactional function).
	TypeCE FunctionType = "CE"
	// TypeSE is an External Output (transactional function).
	TypeSE FunctionType = "SE"
)

// FunctionTypes lists every valid variant tag.
var FunctionTypes = []FunctionType{TypeALI, TypeAIE, TypeEE, TypeCE, TypeSE}

// Valid reports whether t is one of the five variant tags.
func (t FunctionType) Valid() bool {
	switch t {
	case TypeALI, TypeAIE, TypeEE, TypeCE, TypeSE:
		return true
	}
	return false
}

// IsData reports whether t tags a data function (ALI or AIE).
func (t FunctionType) IsData() bool {
	return t == TypeALI || t == TypeAIE
}

// ParseFunctionType converts a stored tag into a FunctionType.
func ParseFunctionType(s string) (FunctionType, error) {
	t := FunctionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown function type %q", s)
	}
	return t, nil
}

// FactorType identifies one of the fourteen general system characteristics
// used as adjustment factors.
type FactorType string

const (
	FactorDataCommunications        FactorType = "DATA_COMMUNICATIONS"
	FactorDistributedDataProcessing FactorType = "DISTRIBUTED_DATA_PROCESSING"
	FactorPerformance               FactorType = "PERFORMANCE"
	FactorHeavilyUsedConfiguration  FactorType = "HEAVILY_USED_CONFIGURATION"
	FactorTransactionRate           FactorType = "TRANSACTION_RATE"
	FactorOnlineDataEntry           FactorType = "ONLINE_DATA_ENTRY"
	FactorEndUserEfficiency         FactorType = "END_USER_EFFICIENCY"
	FactorOnlineUpdate              FactorType = "ONLINE_UPDATE"
	FactorComplexProcessing         FactorType = "COMPLEX_PROCESSING"
	FactorReusability               FactorType = "REUSABILITY"
	FactorInstallationEase          FactorType = "INSTALLATION_EASE"
	FactorOperationalEase           FactorType = "OPERATIONAL_EASE"
	FactorMultipleSites             FactorType = "MULTIPLE_SITES"
	FactorFacilitateChange          FactorType = "FACILITATE_CHANGE"
)

// FactorTypes lists the fourteen adjustment factors, in seeding order.
var FactorTypes = []FactorType{
	FactorDataCommunications,
	FactorDistributedDataProcessing,
	FactorPerformance,
	FactorHeavilyUsedConfiguration,
	FactorTransactionRate,
	FactorOnlineDataEntry,
	FactorEndUserEfficiency,
	FactorOnlineUpdate,
	FactorComplexProcessing,
	FactorReusability,
	FactorInstallationEase,
	FactorOperationalEase,
	FactorMultipleSites,
	FactorFacilitateChange,
}

// Valid reports whether f is one of the fourteen adjustment factors.
func (f FactorType) Valid() bool {
	for _, known := range FactorTypes {
		if f == known {
			return true
		}
	}
	return false
}

// InfluenceType grades a factor's influence on the project.
type InfluenceType string

const (
	InfluenceAbsent      InfluenceType = "ABSENT"
	InfluenceMinimum     InfluenceType = "MINIMUM"
	InfluenceModerate    InfluenceType = "MODERATE"
	InfluenceAverage     InfluenceType = "AVERAGE"
	InfluenceSignificant InfluenceType = "SIGNIFICANT"
	InfluenceStrong      InfluenceType = "STRONG"
)

// Valid reports whether i is a known influence grade.
func (i InfluenceType) Valid() bool {
	switch i {
	case InfluenceAbsent, InfluenceMinimum, InfluenceModerate,
		InfluenceAverage, InfluenceSignificant, InfluenceStrong:
		return true
	}
	return false
}

// EmpiricalType identifies one of the five empirical adjustment factors
// seeded on every new frontier.
type EmpiricalType string

const (
	EmpiricalPlanning     EmpiricalType = "PLANNING"
	EmpiricalCoordination EmpiricalType = "COORDINATION"
	EmpiricalTesting      EmpiricalType = "TESTING"
	EmpiricalDeployment   EmpiricalType = "DEPLOYMENT"
	EmpiricalProductivity EmpiricalType = "PRODUCTIVITY"
)

// Valid reports whether e is one of the five empirical factors.
func (e EmpiricalType) Valid() bool {
	switch e {
	case EmpiricalPlanning, EmpiricalCoordination, EmpiricalTesting,
		EmpiricalDeployment, EmpiricalProductivity:
		return true
	}
	return false
}

// EmpiricalTypes lists the five empirical factors, in seeding order.
var EmpiricalTypes = []EmpiricalType{
	EmpiricalPlanning,
	EmpiricalCoordination,
	EmpiricalTesting,
	EmpiricalDeployment,
	EmpiricalProductivity,
}

// DefaultEmpiricalValues are the percentages seeded when a frontier is created.
var DefaultEmpiricalValues = map[EmpiricalType]int{
	EmpiricalPlanning:     10,
	EmpiricalCoordination: 10,
	EmpiricalTesting:      25,
	EmpiricalDeployment:   5,
	EmpiricalProductivity: 50,
}

// Project is the top-level container. Name is unique within the tenant.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Time        time.Time `json:"time"`
	User        uuid.UUID `json:"user"`
}

// Frontier groups Functions within a Project. Name is unique within the project.
type Frontier struct {
	ID          uuid.UUID `json:"id"`
	Project     uuid.UUID `json:"project"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Time        time.Time `json:"time"`
}

// Factor is one adjustment factor of a Frontier.
type Factor struct {
	Frontier  uuid.UUID     `json:"frontier"`
	Factor    FactorType    `json:"factor"`
	Influence InfluenceType `json:"influence"`
}

// Empirical is one empirical adjustment of a Frontier, as a percentage.
type Empirical struct {
	Frontier  uuid.UUID     `json:"frontier"`
	Empirical EmpiricalType `json:"empirical"`
	Value     int           `json:"value"`
}

// User is an authenticated principal, registered on first request.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Time  time.Time `json:"time"`
}

// Page is one page of a listed collection.
type Page[T any] struct {
	// Pages is the total number of pages.
	Pages uint64 `json:"pages"`
	// Index is the 1-based index of this page.
	Index uint64 `json:"index"`
	// Size is the number of records in this page.
	Size uint64 `json:"size"`
	// Records is the total number of records.
	Records uint64 `json:"records"`
	// Items holds the records of this page.
	Items []T `json:"items"`
}

// NewPage returns an empty page.
func NewPage[T any]() *Page[T] {
	return &Page[T]{Items: []T{}}
}
