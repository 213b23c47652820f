package state_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/MrJamesThe3rd/tally/internal/state"
)

var _ = Describe("BoltStore", func() {
	var (
		ctx   context.Context
		path  string
		store *state.BoltStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		path = filepath.Join(GinkgoT().TempDir(), "state.db")

		var err error
		store, err = state.NewBoltStore(path)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("Get", func() {
		When("the key was never written", func() {
			It("returns ErrNotFound", func() {
				_, err := store.Get(ctx, state.KeyProducts)
				Expect(err).To(MatchError(state.ErrNotFound))
			})
		})

		When("the key was written", func() {
			BeforeEach(func() {
				Expect(store.Put(ctx, state.KeyProducts, []byte(`[{"name":"Milk"}]`))).To(Succeed())
			})

			It("returns the stored value", func() {
				v, err := store.Get(ctx, state.KeyProducts)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(v)).To(Equal(`[{"name":"Milk"}]`))
			})

			It("overwrites on a second put", func() {
				Expect(store.Put(ctx, state.KeyProducts, []byte(`[]`))).To(Succeed())

				v, err := store.Get(ctx, state.KeyProducts)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(v)).To(Equal(`[]`))
			})
		})
	})

	Describe("Delete", func() {
		It("removes the key", func() {
			Expect(store.Put(ctx, state.KeyBudgetCeiling, []byte(`"20"`))).To(Succeed())
			Expect(store.Delete(ctx, state.KeyBudgetCeiling)).To(Succeed())

			_, err := store.Get(ctx, state.KeyBudgetCeiling)
			Expect(err).To(MatchError(state.ErrNotFound))
		})

		It("is a no-op for a missing key", func() {
			Expect(store.Delete(ctx, "missing")).To(Succeed())
		})
	})

	Describe("reopening the file", func() {
		It("keeps previously written values", func() {
			Expect(store.Put(ctx, state.KeyCollected, []byte(`[1,2]`))).To(Succeed())
			Expect(store.Close()).To(Succeed())

			reopened, err := state.NewBoltStore(path)
			Expect(err).NotTo(HaveOccurred())
			store = reopened

			v, err := store.Get(ctx, state.KeyCollected)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(v)).To(Equal(`[1,2]`))
		})
	})
})

var _ = Describe("JSON helpers", func() {
	var (
		ctx   context.Context
		store *state.MemoryStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = state.NewMemoryStore()
	})

	It("reports absence without an error", func() {
		var v []string
		found, err := state.GetJSON(ctx, store, "nothing", &v)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("round-trips a value", func() {
		Expect(state.PutJSON(ctx, store, state.Key("weekly", state.KeyProducts), []string{"a", "b"})).To(Succeed())

		var v []string
		found, err := state.GetJSON(ctx, store, "weekly/products", &v)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(v).To(Equal([]string{"a", "b"}))
	})

	It("fails on a corrupted value", func() {
		Expect(store.Put(ctx, "broken", []byte("{"))).To(Succeed())

		var v map[string]string
		_, err := state.GetJSON(ctx, store, "broken", &v)
		Expect(err).To(HaveOccurred())
	})
})
