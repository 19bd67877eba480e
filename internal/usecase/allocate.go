package usecase

import "github.com/polkiloo/atm/internal/domain/model"

// AllocateNotes maps a requested amount to a note mix the machine can
// dispense. The amount must be a positive multiple of 100; callers
// validate that, and that the inventory total covers the amount, before
// calling.
//
// A greedy pass takes min(remaining/denomination, available) from the
// largest denomination down. If the greedy remainder is zero that mix is
// returned. Otherwise a bounded search iterates the 2000, 500 and 200
// counts downward from their greedy values (each inclusive of zero) and
// forces the residue into available 100s, returning the first hit. The
// search never raises a count above its greedy value, so mixes that use
// more of a middle denomination than greedy chose are not examined; a
// request can therefore be reported unavailable even though such a mix
// exists. The descending order is part of the contract: identical
// inventory and amount always produce the same mix.
//
// When nothing fits, the greedy breakdown is returned with ok == false.
func AllocateNotes(amount int64, inv model.NoteBundle) (model.NoteBundle, bool) {
	greedy, remaining := greedyNotes(amount, inv)
	if remaining == 0 {
		return greedy, true
	}

	for n2000 := greedy.Note2000; n2000 >= 0; n2000-- {
		for n500 := greedy.Note500; n500 >= 0; n500-- {
			for n200 := greedy.Note200; n200 >= 0; n200-- {
				rem := amount - int64(n2000)*model.Denom2000 - int64(n500)*model.Denom500 - int64(n200)*model.Denom200
				if rem < 0 || rem%model.Denom100 != 0 {
					continue
				}
				need := int(rem / model.Denom100)
				if need <= inv.Note100 {
					return model.NoteBundle{Note2000: n2000, Note500: n500, Note200: n200, Note100: need}, true
				}
			}
		}
	}

	return greedy, false
}

func greedyNotes(amount int64, inv model.NoteBundle) (model.NoteBundle, int64) {
	remaining := amount
	take := func(denom int64, available int) int {
		n := int(remaining / denom)
		if n > available {
			n = available
		}
		remaining -= int64(n) * denom
		return n
	}

	var b model.NoteBundle
	b.Note2000 = take(model.Denom2000, inv.Note2000)
	b.Note500 = take(model.Denom500, inv.Note500)
	b.Note200 = take(model.Denom200, inv.Note200)
	b.Note100 = take(model.Denom100, inv.Note100)
	return b, remaining
}
