package backend

import (
	"sort"

	"github.com/pcineverdies/dummy-cc/internal/lir"
)

// interval is one virtual register's live range, derived from the
// liveness sets: defined at Start, still needed up to and including End.
type interval struct {
	reg        lir.Reg
	start, end int
	crossesCall bool
}

// allocResult is the outcome of linear-scan allocation over one
// function's selected instruction stream.
type allocResult struct {
	phys      map[lir.Reg]lir.Reg // virtual -> physical (pseudo-reg id).
	spillSlot map[lir.Reg]int     // virtual -> tp-relative spill slot index.
	usedSRegs map[string]bool     // callee-saved physical regs actually assigned.
	numSpills int
}

// allocate implements the linear-scan algorithm of spec.md §4.4 over
// instrs: compute LIVE-OUT via the dataflow in liveness.go, derive one
// interval per virtual register, then sweep left to right handing out
// the physical pool (t0..t6, s1..s9) and spilling to the tp-relative
// stack when the pool is exhausted.
func allocate(instrs []AsmInstr) *allocResult {
	_, liveOut := liveness(instrs)

	starts := map[lir.Reg]int{}
	ends := map[lir.Reg]int{}
	callIdx := map[int]bool{}
	for i, ins := range instrs {
		if ins.Kind == KCall {
			callIdx[i] = true
		}
		for _, r := range defsOf(ins) {
			if _, ok := starts[r]; !ok {
				starts[r] = i
			}
			if _, ok := ends[r]; !ok {
				ends[r] = i
			}
		}
		for _, r := range usesOf(ins) {
			if i > ends[r] {
				ends[r] = i
			}
		}
	}
	for i := range instrs {
		for r := range liveOut[i] {
			if i > ends[r] {
				ends[r] = i
			}
			if _, ok := starts[r]; !ok {
				starts[r] = i
			}
		}
	}

	var intervals []interval
	for r, st := range starts {
		iv := interval{reg: r, start: st, end: ends[r]}
		for i := range instrs {
			if callIdx[i] && i >= iv.start && i <= iv.end {
				iv.crossesCall = true
				break
			}
		}
		intervals = append(intervals, iv)
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })

	res := &allocResult{phys: map[lir.Reg]lir.Reg{}, spillSlot: map[lir.Reg]int{}, usedSRegs: map[string]bool{}}

	free := map[string]bool{}
	for _, name := range allocPool {
		free[name] = true
	}
	var active []interval // sorted by end, ascending.

	expire := func(at int) {
		kept := active[:0]
		for _, a := range active {
			if a.end < at {
				free[regName(res.phys[a.reg])] = true
			} else {
				kept = append(kept, a)
			}
		}
		active = kept
	}

	// pickFree hands out a register for an interval. A call-crossing
	// interval (preferS) must land in a callee-saved s register: a
	// caller-saved t register is clobbered by any call within the
	// interval's range, so handing one out here would silently corrupt
	// the value across the call. If no s register is free, report
	// failure rather than falling back to a t register; the caller
	// below spills instead.
	pickFree := func(preferS bool) (string, bool) {
		if preferS {
			for _, name := range allocPool {
				if free[name] && name[0] == 's' {
					return name, true
				}
			}
			return "", false
		}
		for _, name := range allocPool {
			if free[name] {
				return name, true
			}
		}
		return "", false
	}

	for _, iv := range intervals {
		expire(iv.start)

		name, ok := pickFree(iv.crossesCall)
		if ok {
			free[name] = false
			res.phys[iv.reg] = P(name)
			if name[0] == 's' {
				res.usedSRegs[name] = true
			}
			active = append(active, iv)
			sort.Slice(active, func(i, j int) bool { return active[i].end < active[j].end })
			continue
		}

		// Pool exhausted: spill the active interval with the farthest end
		// if it outlives iv, else spill iv itself (classic linear-scan
		// spill heuristic). A call-crossing iv can only reclaim a
		// register held by a victim already in the s class — evicting a
		// t-register victim wouldn't free the s register iv actually
		// needs.
		victimPos := -1
		for i := len(active) - 1; i >= 0; i-- {
			name := regName(res.phys[active[i].reg])
			if iv.crossesCall && name[0] != 's' {
				continue
			}
			victimPos = i
			break
		}

		if victimPos >= 0 && active[victimPos].end > iv.end {
			victim := active[victimPos]
			active = append(active[:victimPos], active[victimPos+1:]...)
			victimName := regName(res.phys[victim.reg])

			res.spillSlot[victim.reg] = res.numSpills
			res.numSpills++
			delete(res.phys, victim.reg)

			res.phys[iv.reg] = P(victimName)
			if victimName[0] == 's' {
				res.usedSRegs[victimName] = true
			}

			active = append(active, iv)
			sort.Slice(active, func(i, j int) bool { return active[i].end < active[j].end })
		} else {
			res.spillSlot[iv.reg] = res.numSpills
			res.numSpills++
		}
	}
	return res
}
