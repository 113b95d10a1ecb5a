// Copyright (c) 2018-2021, AT&T Intellectual Property. All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only

package depgraph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/danos/vci"
	"github.com/danos/vci/conf"
)

// ModuleManager brings a module up or down as the commit engine's module
// set changes between commits. A module is any running component the
// template tree named in a "%module" declaration.
type ModuleManager interface {
	Start(ctx context.Context, module string) error
	Stop(ctx context.Context, module string) error
}

// restartRecord tracks a module's respawn bookkeeping (spec.md
// SUPPLEMENTED FEATURES: restart count and the last time it was brought
// up), restoring behavior the distilled spec dropped but
// module_manager.cc's ModuleManager::execute/terminate tracked.
type restartRecord struct {
	restarts  int
	lastStart time.Time
}

// VCIModuleManager starts and stops components over the VCI bus, using
// each component's ServiceConfig from the component configuration
// directory to find the model that owns a given module.
type VCIModuleManager struct {
	Services map[string]*conf.ServiceConfig // module name -> owning component

	mu       sync.Mutex
	restarts map[string]*restartRecord
}

// NewVCIModuleManager indexes services by every module name each declares,
// so Start/Stop can be called with the template tree's module names
// directly.
func NewVCIModuleManager(services []*conf.ServiceConfig) *VCIModuleManager {
	m := &VCIModuleManager{
		Services: make(map[string]*conf.ServiceConfig),
		restarts: make(map[string]*restartRecord),
	}
	for _, svc := range services {
		for _, model := range svc.ModelByModelSet {
			for _, mod := range model.Modules {
				m.Services[mod] = svc
			}
		}
	}
	return m
}

// Start dials the module's owning component over VCI and issues its
// "config-reload" lifecycle RPC. Every Start after the first for the same
// module is counted as a restart; whether the component is still running
// is not checked (bookkeeping a supervisor would otherwise own).
func (m *VCIModuleManager) Start(ctx context.Context, module string) error {
	svc, ok := m.Services[module]
	if !ok {
		return fmt.Errorf("depgraph: no component provides module %q", module)
	}

	m.mu.Lock()
	rec, seen := m.restarts[module]
	if !seen {
		rec = &restartRecord{}
		m.restarts[module] = rec
	} else {
		rec.restarts++
	}
	rec.lastStart = now()
	m.mu.Unlock()

	client, err := vci.Dial()
	if err != nil {
		return fmt.Errorf("depgraph: dial %s: %w", svc.Name, err)
	}
	defer client.Close()

	var result struct{}
	return client.Call(svc.Name, "config-reload", struct{}{}).StoreOutputInto(&result)
}

// Stop dials the module's owning component and issues its "config-remove"
// lifecycle RPC. module_manager.cc's terminate() is a hard process kill;
// here the component is expected to quiesce that module's configuration on
// request rather than the whole process exiting.
func (m *VCIModuleManager) Stop(ctx context.Context, module string) error {
	svc, ok := m.Services[module]
	if !ok {
		return fmt.Errorf("depgraph: no component provides module %q", module)
	}

	client, err := vci.Dial()
	if err != nil {
		return fmt.Errorf("depgraph: dial %s: %w", svc.Name, err)
	}
	defer client.Close()

	var result struct{}
	return client.Call(svc.Name, "config-remove", struct{}{}).StoreOutputInto(&result)
}

// RestartCount reports how many times Start has been called for a module
// after its first Start.
func (m *VCIModuleManager) RestartCount(module string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.restarts[module]; ok {
		return rec.restarts
	}
	return 0
}

// now is a seam so tests can stub restart-bookkeeping timestamps; callers
// outside this package never construct a restartRecord themselves.
var now = time.Now
