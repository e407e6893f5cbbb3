// Package metric publishes engine counters with expvar. Every metered type
// gets one expvar map named "zen.<type>" holding its counters.
package metric

import (
	"expvar"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// Counter names.
const (
	BlockCounter     = "Blocks"
	MessageCounter   = "Messages"
	SampleCounter    = "Samples"
	LatencyCounter   = "Latency"
	DurationCounter  = "Duration"
	ComponentCounter = "Components"
)

const prefix = "zen"

var registry = struct {
	sync.Mutex
	meters map[string]*meter
}{
	meters: map[string]*meter{},
}

type meter struct {
	vars       *expvar.Map
	components *expvar.Int
	blocks     *expvar.Int
	messages   *expvar.Int
	samples    *expvar.Int
	latency    *duration
	duration   *duration
}

// ResetFunc starts measuring. Latency is counted from the call.
type ResetFunc func() MeasureFunc

// MeasureFunc records one processed block.
type MeasureFunc func(samples, messages int64)

// Meter registers one more instance of the component's type and returns
// its measure constructor.
func Meter(component interface{}, sampleRate float64) ResetFunc {
	m := lookup(typeName(component))
	m.components.Add(1)
	return func() MeasureFunc {
		last := time.Now()
		var (
			size   int64
			length time.Duration
		)
		return func(samples, messages int64) {
			m.latency.set(time.Since(last))
			m.blocks.Add(1)
			m.messages.Add(messages)
			m.samples.Add(samples)
			if samples != size {
				size = samples
				length = time.Duration(float64(samples) / sampleRate * float64(time.Second))
			}
			m.duration.add(length)
			last = time.Now()
		}
	}
}

// Get returns the counters of the component's type.
func Get(component interface{}) map[string]string {
	registry.Lock()
	m, ok := registry.meters[typeName(component)]
	registry.Unlock()
	if !ok {
		return map[string]string{}
	}
	return m.values()
}

// GetAll returns the counters of every metered type.
func GetAll() map[string]map[string]string {
	registry.Lock()
	defer registry.Unlock()
	all := make(map[string]map[string]string, len(registry.meters))
	for name, m := range registry.meters {
		all[name] = m.values()
	}
	return all
}

func lookup(name string) *meter {
	registry.Lock()
	defer registry.Unlock()
	if m, ok := registry.meters[name]; ok {
		return m
	}
	m := &meter{
		vars:       new(expvar.Map).Init(),
		components: new(expvar.Int),
		blocks:     new(expvar.Int),
		messages:   new(expvar.Int),
		samples:    new(expvar.Int),
		latency:    &duration{},
		duration:   &duration{},
	}
	m.vars.Set(ComponentCounter, m.components)
	m.vars.Set(BlockCounter, m.blocks)
	m.vars.Set(MessageCounter, m.messages)
	m.vars.Set(SampleCounter, m.samples)
	m.vars.Set(LatencyCounter, m.latency)
	m.vars.Set(DurationCounter, m.duration)
	expvar.Publish(fmt.Sprintf("%s.%s", prefix, name), m.vars)
	registry.meters[name] = m
	return m
}

func (m *meter) values() map[string]string {
	values := make(map[string]string)
	m.vars.Do(func(kv expvar.KeyValue) {
		values[kv.Key] = kv.Value.String()
	})
	return values
}

func typeName(component interface{}) string {
	t := reflect.TypeOf(component)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}

// duration is an expvar.Var formatting a time.Duration.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
