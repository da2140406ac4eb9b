// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Plan struct {
	// The name of the plan.
	Name string `json:"name" yaml:"name"`
	// A description of the plan.
	Description string `json:"description" yaml:"description"`
	// The key that pays for and signs every step unless the step overrides it.
	Payer string `json:"payer" yaml:"payer"`
	// Steps to perform during simulation.
	Steps []Step `json:"steps" yaml:"steps"`
}

type Step struct {
	// Description of the step.
	Description string `json:"description" yaml:"description"`
	// The operation to perform. (required)
	Endpoint Endpoint `json:"endpoint" yaml:"endpoint"`
	// The named key the step acts on. (required)
	Key string `json:"key" yaml:"key"`
	// Overrides [Plan.Payer].
	Payer string `json:"payer,omitempty" yaml:"payer,omitempty"`
	// The initial counter value of an initialize step.
	Value uint64 `json:"value,omitempty" yaml:"value,omitempty"`
	// Define required assertions against this step.
	Require *Require `json:"require,omitempty" yaml:"require,omitempty"`
}

type Endpoint string

const (
	// Create a named key if it does not exist.
	KeyEndpoint Endpoint = "key"
	// Create the counter account of [Step.Key] holding [Step.Value].
	InitializeEndpoint Endpoint = "initialize"
	// Increment the counter account of [Step.Key].
	IncrementEndpoint Endpoint = "increment"
	// Read the counter account of [Step.Key] without a transaction.
	ReadEndpoint Endpoint = "read"
)

type Require struct {
	// Assertion against the counter value after the step.
	Result *ResultAssertion `json:"result,omitempty" yaml:"result,omitempty"`
	// Substring expected in the error of a failing transaction.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

type ResultAssertion struct {
	// The operator to use for the assertion.
	Operator Operator `json:"operator" yaml:"operator"`
	// The value to compare against.
	Value string `json:"value" yaml:"value"`
}

type Operator string

const (
	NumericGt Operator = ">"
	NumericLt Operator = "<"
	NumericGe Operator = ">="
	NumericLe Operator = "<="
	NumericEq Operator = "=="
	NumericNe Operator = "!="
)

func NewResponse(id int) *Response {
	return &Response{
		ID: id,
	}
}

type Response struct {
	// The index of the step that generated this response.
	ID int `json:"id"`
	// The result of the step.
	Result Result `json:"result"`
	// The error message if available.
	Error string `json:"error,omitempty"`
}

func (r *Response) Print(w io.Writer) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

type Result struct {
	// The ID of the transaction the step issued.
	TxID string `json:"txID,omitempty"`
	// The account the step acted on.
	Address string `json:"address,omitempty"`
	// The counter value after the step, if the account holds one.
	Count *uint64 `json:"count,omitempty"`
	// Program log lines of the transaction.
	Logs []string `json:"logs,omitempty"`
	// An optional message.
	Msg string `json:"msg,omitempty"`
}

// validateAssertion validates the assertion against the actual value.
func validateAssertion(actual uint64, assertion *ResultAssertion) (bool, error) {
	value, err := strconv.ParseUint(assertion.Value, 10, 64)
	if err != nil {
		return false, err
	}

	switch assertion.Operator {
	case NumericGt:
		return actual > value, nil
	case NumericLt:
		return actual < value, nil
	case NumericGe:
		return actual >= value, nil
	case NumericLe:
		return actual <= value, nil
	case NumericEq:
		return actual == value, nil
	case NumericNe:
		return actual != value, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidOperator, assertion.Operator)
	}
}

func unmarshalPlan(bytes []byte) (*Plan, error) {
	var p Plan
	switch {
	case isJSON(bytes):
		if err := json.Unmarshal(bytes, &p); err != nil {
			return nil, err
		}
	case isYAML(bytes):
		if err := yaml.Unmarshal(bytes, &p); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidConfigFormat
	}
	return &p, nil
}

// verifyPlan checks the shape of every step before anything is executed.
func verifyPlan(p *Plan) error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: no steps found", ErrInvalidPlan)
	}
	for i, step := range p.Steps {
		if len(step.Key) == 0 {
			return fmt.Errorf("%w %d: missing key", ErrInvalidStep, i)
		}
		switch step.Endpoint {
		case KeyEndpoint:
			if step.Require != nil {
				return fmt.Errorf("%w %d: key steps take no assertions", ErrInvalidStep, i)
			}
		case InitializeEndpoint, IncrementEndpoint:
			if len(step.Payer) == 0 && len(p.Payer) == 0 {
				return fmt.Errorf("%w %d: missing payer", ErrInvalidStep, i)
			}
		case ReadEndpoint:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidEndpoint, step.Endpoint)
		}
	}
	return nil
}

func isJSON(b []byte) bool {
	var js map[string]interface{}
	return json.Unmarshal(b, &js) == nil
}

func isYAML(b []byte) bool {
	var y map[string]interface{}
	return yaml.Unmarshal(b, &y) == nil
}
