package boolrun

const (
	DEBUG = false

	ExecutionHalted  = "halted"
	ExecutionFailed  = "failed"
	ExecutionStopped = "stopped"

	// costs for the Wagner-Fischer distance between expected and actual output
	InsertCost     = 1
	DeleteCost     = 1
	SubstituteCost = 2
)
