package agent

import (
	"fmt"
	"reflect"
)

// Type names a kind of agent. Each Type is registered with the concrete
// ConfigList that describes agents of that kind.
type Type string

const (
	QLambdaTabular Type = "QLambda-Tabular"
)

// registeredTypes maps each registered Type to its concrete ConfigList
// type. Packages implementing agents register themselves in init so
// that this package does not import them.
var registeredTypes = make(map[Type]reflect.Type)

// Register associates agentType with the concrete type of configs, so
// that a TypedConfigList of agentType can be decoded from JSON.
// Registering a Type twice with different ConfigList types panics.
func Register(agentType Type, configs ConfigList) {
	ty := reflect.TypeOf(configs)
	if prev, ok := registeredTypes[agentType]; ok && prev != ty {
		panic(fmt.Sprintf("register: agent type %q already registered "+
			"with %v", agentType, prev))
	}
	registeredTypes[agentType] = ty
}

// Registered returns whether agentType has been registered
func Registered(agentType Type) bool {
	_, ok := registeredTypes[agentType]
	return ok
}
