package state

// Clone produces a deep copy of the ledger. The dispatcher hands clones to
// handlers so a rejection can discard every mutation in one step.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return nil
	}
	out := &Ledger{
		Ticker:   l.Ticker,
		Name:     l.Name,
		Evolve:   l.Evolve,
		Balances: make(map[string]uint64, len(l.Balances)),
		Records:  make(map[string]*Record, len(l.Records)),
		Reserved: make(map[string]*ReservedName, len(l.Reserved)),
		Fees:     make(map[int]uint64, len(l.Fees)),
		Gateways: make(map[string]*Gateway, len(l.Gateways)),
		Settings: l.Settings,
	}
	for addr, bal := range l.Balances {
		out.Balances[addr] = bal
	}
	for name, rec := range l.Records {
		cp := *rec
		out.Records[name] = &cp
	}
	for name, res := range l.Reserved {
		cp := *res
		out.Reserved[name] = &cp
	}
	for length, fee := range l.Fees {
		out.Fees[length] = fee
	}
	out.Tiers = l.Tiers.clone()
	for addr, gw := range l.Gateways {
		out.Gateways[addr] = gw.Clone()
	}
	out.Foundation = l.Foundation.clone()
	return out
}

func (r TierRegistry) clone() TierRegistry {
	out := TierRegistry{}
	if r.Current != nil {
		out.Current = append([]string(nil), r.Current...)
	}
	if r.History != nil {
		out.History = append([]Tier(nil), r.History...)
	}
	return out
}

// Clone deep-copies a gateway entry, including its vaults and delegate
// vault lists.
func (g *Gateway) Clone() *Gateway {
	if g == nil {
		return nil
	}
	out := *g
	out.Vaults = append([]Vault(nil), g.Vaults...)
	out.Delegates = make(map[string][]Vault, len(g.Delegates))
	for addr, vaults := range g.Delegates {
		out.Delegates[addr] = append([]Vault(nil), vaults...)
	}
	out.Settings.DelegateAllowList = append([]string(nil), g.Settings.DelegateAllowList...)
	return &out
}

func (f Foundation) clone() Foundation {
	out := Foundation{
		MinSignatures: f.MinSignatures,
		ActionPeriod:  f.ActionPeriod,
	}
	out.Addresses = append([]string(nil), f.Addresses...)
	if f.Actions != nil {
		out.Actions = make([]*FoundationAction, len(f.Actions))
		for i, action := range f.Actions {
			cp := *action
			cp.Signed = append([]string(nil), action.Signed...)
			cp.Value = action.Value.clone()
			out.Actions[i] = &cp
		}
	}
	return out
}

func (v ActionValue) clone() ActionValue {
	out := v
	if v.Fees != nil {
		out.Fees = make(map[int]uint64, len(v.Fees))
		for length, fee := range v.Fees {
			out.Fees[length] = fee
		}
	}
	if v.Tier != nil {
		tier := *v.Tier
		out.Tier = &tier
	}
	return out
}
