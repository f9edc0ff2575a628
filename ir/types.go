// Package ir defines the vendor-neutral intermediate representation shared
// by every parser, the analyzer, the mapper, and every generator. Plain
// data only: construction, identity, and deterministic iteration. No I/O,
// no parsing, no vendor formatting belongs here.
package ir

// AddressKind enumerates the supported Address value shapes.
type AddressKind string

const (
	AddressHost    AddressKind = "host"
	AddressNetwork AddressKind = "network"
	AddressRange   AddressKind = "range"
	AddressFQDN    AddressKind = "fqdn"
)

// Protocol enumerates the supported Service protocols.
type Protocol string

const (
	ProtoTCP   Protocol = "tcp"
	ProtoUDP   Protocol = "udp"
	ProtoICMP  Protocol = "icmp"
	ProtoIP    Protocol = "ip"
	ProtoOther Protocol = "other"
)

// RuleAction enumerates the two normalized rule dispositions.
type RuleAction string

const (
	ActionAllow RuleAction = "allow"
	ActionDeny  RuleAction = "deny"
)

// WarningSeverity enumerates Warning severities.
type WarningSeverity string

const (
	SeverityInfo    WarningSeverity = "info"
	SeverityWarning WarningSeverity = "warning"
	SeverityError   WarningSeverity = "error"
)

// RouteKind enumerates StaticRoute origins.
type RouteKind string

const (
	RouteStatic RouteKind = "static"
	RouteOSPF   RouteKind = "ospf"
	RouteBGP    RouteKind = "bgp"
	RouteEIGRP  RouteKind = "eigrp"
	RouteRIP    RouteKind = "rip"
)

// StringSet is a deterministic-order-at-render set of member names. Identity
// is by name; iteration order is insertion-independent by design (callers
// MUST call Sorted() wherever output ordering is observable, per the IR's
// reproducibility invariant).
type StringSet map[string]struct{}

// NewStringSet builds a StringSet from a variadic list of names, skipping
// empties.
func NewStringSet(names ...string) StringSet {
	s := make(StringSet, len(names))
	for _, n := range names {
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Add inserts name into the set.
func (s StringSet) Add(name string) {
	if name != "" {
		s[name] = struct{}{}
	}
}

// Has reports whether name is a member.
func (s StringSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the set's members in ascending lexical order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

// Clone returns a shallow independent copy.
func (s StringSet) Clone() StringSet {
	out := make(StringSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Interface represents a physical, VLAN, aggregate, or tunnel interface.
// Identity is Name.
type Interface struct {
	Name string
	Zone string // "" means unset
	IPAddress string
	MaskLength int // 0 means unset
	Description string
	VLANID int // 0 means unset

	// AggregateMembers lists the physical member interfaces when this
	// Interface represents an LACP aggregate. Explicit field resolving
	// the source's monkey-patched aggregate_group attribute (spec.md
	// Open Questions); empty for non-aggregate interfaces.
	AggregateMembers []string
}

// Address represents a host, network, range, or fqdn address object.
type Address struct {
	Name         string
	Type         AddressKind
	Value1       string
	Value2       string // optional: CIDR length for network, end for range
	OriginalText string
}

// Service represents a protocol/port-spec service object.
type Service struct {
	Name         string
	Protocol     Protocol
	Port         string // free text: "eq 80", "range 1024 2048", ""
	OriginalText string
}

// Group represents an address-group: a named set of address or group names.
type Group struct {
	Name         string
	Members      StringSet
	OriginalText string
}

// ServiceGroup represents a service-group: a named set of service or group
// names.
type ServiceGroup struct {
	Name         string
	Members      StringSet
	OriginalText string
}

// TimeRange represents a schedule object.
type TimeRange struct {
	Name         string
	StartTime    string
	StartDate    string
	EndTime      string
	EndDate      string
	OriginalText string
}

// SecurityProfile represents one named security profile (IPS, AV, web
// filter, etc.) with vendor-specific properties.
type SecurityProfile struct {
	Name       string
	Type       string
	Properties map[string]string
}

// StaticRoute represents one routing entry, static or materialized from a
// dynamic-routing protocol block.
type StaticRoute struct {
	Destination string // CIDR
	NextHop     string
	Interface   string
	Distance    int
	Metric      int // 0 means unset
	RouteType   RouteKind
	Comment     string
}

// Rule represents one firewall security policy entry. SequenceID defines
// match order; lower matches first.
type Rule struct {
	SequenceID  int
	Name        string
	Action      RuleAction
	Remark      string
	Enabled     bool
	Log         bool
	HitCount    int
	TimeRange   string

	SourceInterface      StringSet
	DestinationInterface StringSet
	Source               StringSet
	Destination          StringSet
	Service              StringSet
	Application          StringSet

	SecurityProfiles map[string]string

	// Context/VDOM carry multi-context ASA / multi-VDOM FortiGate scoping,
	// kept from the source model even though spec.md's essential-attribute
	// table omits them.
	Context string
	VDOM    string

	OriginalText string
}

// NewRule returns a Rule with all sets initialized, ready for population.
func NewRule(sequenceID int, name string, action RuleAction) *Rule {
	return &Rule{
		SequenceID:           sequenceID,
		Name:                 name,
		Action:               action,
		Enabled:              true,
		SourceInterface:      StringSet{},
		DestinationInterface: StringSet{},
		Source:               StringSet{},
		Destination:          StringSet{},
		Service:              StringSet{},
		Application:          StringSet{},
		SecurityProfiles:     map[string]string{},
	}
}

// NatRule represents one NAT policy entry.
type NatRule struct {
	SequenceID int
	Name       string

	OriginalSource      StringSet
	TranslatedSource    string // "" means unset; sentinel "dynamic-ip-and-port" means interface PAT
	OriginalDestination StringSet
	TranslatedDestination string
	OriginalService     StringSet
	TranslatedService   string

	SourceInterface      StringSet
	DestinationInterface StringSet

	Enabled      bool
	Remark       string
	OriginalText string
}

// NewNatRule returns a NatRule with all sets initialized.
func NewNatRule(sequenceID int, name string) *NatRule {
	return &NatRule{
		SequenceID:           sequenceID,
		Name:                 name,
		Enabled:              true,
		OriginalSource:       StringSet{},
		OriginalDestination:  StringSet{},
		OriginalService:      StringSet{},
		SourceInterface:      StringSet{},
		DestinationInterface: StringSet{},
	}
}

// Warning is recorded by parsers, the mapper, and generators whenever
// input or output cannot be handled exactly; it never aborts the pipeline.
type Warning struct {
	Category     string // "Parser", "Mapper", "Generator"
	Message      string
	RuleID       string
	Suggestion   string
	OriginalLine string
	Severity     WarningSeverity
	Details      []string
}

// FirewallConfig is the top-level IR container. It owns every entity
// produced by a single parser invocation.
type FirewallConfig struct {
	Addresses     map[string]*Address
	Services      map[string]*Service
	AddressGroups map[string]*Group
	ServiceGroups map[string]*ServiceGroup
	TimeRanges    map[string]*TimeRange
	Interfaces    map[string]*Interface

	SecurityProfiles map[string]*SecurityProfile

	Rules    []*Rule
	NatRules []*NatRule

	StaticRoutes []*StaticRoute

	// DynamicRoutingConfig holds raw OSPF/BGP config blocks captured
	// verbatim alongside their materialized StaticRoute entries.
	DynamicRoutingConfig string

	Warnings []Warning
}

// New returns an empty, fully initialized FirewallConfig.
func New() *FirewallConfig {
	return &FirewallConfig{
		Addresses:        map[string]*Address{},
		Services:         map[string]*Service{},
		AddressGroups:    map[string]*Group{},
		ServiceGroups:    map[string]*ServiceGroup{},
		TimeRanges:       map[string]*TimeRange{},
		Interfaces:       map[string]*Interface{},
		SecurityProfiles: map[string]*SecurityProfile{},
	}
}

// AddWarning appends a warning to the config.
func (c *FirewallConfig) AddWarning(w Warning) {
	c.Warnings = append(c.Warnings, w)
}

// HasAddress reports whether an address with the given name already exists.
func (c *FirewallConfig) HasAddress(name string) bool {
	_, ok := c.Addresses[name]
	return ok
}

// HasService reports whether a service with the given name already exists.
func (c *FirewallConfig) HasService(name string) bool {
	_, ok := c.Services[name]
	return ok
}

// SortedAddressNames returns address names in ascending order.
func (c *FirewallConfig) SortedAddressNames() []string {
	return sortedKeysAddr(c.Addresses)
}

// SortedServiceNames returns service names in ascending order.
func (c *FirewallConfig) SortedServiceNames() []string {
	return sortedKeysSvc(c.Services)
}

// SortedAddressGroupNames returns address-group names in ascending order.
func (c *FirewallConfig) SortedAddressGroupNames() []string {
	return sortedKeysGrp(c.AddressGroups)
}

// SortedServiceGroupNames returns service-group names in ascending order.
func (c *FirewallConfig) SortedServiceGroupNames() []string {
	return sortedKeysSvcGrp(c.ServiceGroups)
}

// SortedInterfaceNames returns interface names in ascending order.
func (c *FirewallConfig) SortedInterfaceNames() []string {
	return sortedKeysIface(c.Interfaces)
}
