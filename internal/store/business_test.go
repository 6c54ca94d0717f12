// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"stampcard/internal/models"
)

func TestBusinessCRUD(t *testing.T) {
	db := testDB(t)
	s := NewBusinessStore(db)
	t.Cleanup(func() { cleanBusinesses(t, db, "test-roastery") })

	created, err := s.Create(&models.Business{
		Name:           "Test Roastery",
		Slug:           "test-roastery",
		StampIcon:      "coffee-cup",
		StampsRequired: 8,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("created business has no id")
	}
	if created.StampsRequired != 8 {
		t.Errorf("StampsRequired = %d, want 8", created.StampsRequired)
	}

	found, err := s.FindBySlug("test-roastery")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("FindBySlug = %+v, want id %s", found, created.ID)
	}

	found.StampsRequired = 12
	if err := s.Update(found); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, err := s.FindByID(found.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if again.StampsRequired != 12 {
		t.Errorf("StampsRequired after update = %d, want 12", again.StampsRequired)
	}

	if err := s.Delete(found.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	gone, err := s.FindByID(found.ID)
	if err != nil {
		t.Fatalf("FindByID after delete: %v", err)
	}
	if gone != nil {
		t.Error("business still present after delete")
	}
}

func TestBusinessFindMissing(t *testing.T) {
	db := testDB(t)
	s := NewBusinessStore(db)

	b, err := s.FindBySlug("no-such-business")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if b != nil {
		t.Errorf("FindBySlug = %+v, want nil", b)
	}
}

func TestCardLifecycle(t *testing.T) {
	db := testDB(t)
	businesses := NewBusinessStore(db)
	cards := NewCardStore(db)
	t.Cleanup(func() { cleanBusinesses(t, db, "test-cards") })

	biz, err := businesses.Create(&models.Business{
		Name: "Test Cards", Slug: "test-cards", StampsRequired: 2,
	})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}

	card, err := cards.Create(biz.ID, "customer@example.com")
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	if card.Stamps != 0 || card.Redeemed {
		t.Errorf("fresh card = %+v", card)
	}

	card, err = cards.AddStamp(card.ID)
	if err != nil {
		t.Fatalf("AddStamp: %v", err)
	}
	if card.Complete(biz.StampsRequired) {
		t.Error("card complete after one stamp, threshold is two")
	}

	card, err = cards.AddStamp(card.ID)
	if err != nil {
		t.Fatalf("AddStamp: %v", err)
	}
	if !card.Complete(biz.StampsRequired) {
		t.Errorf("card not complete at threshold: %+v", card)
	}

	card, err = cards.Redeem(card.ID)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if !card.Redeemed || card.Stamps != 0 {
		t.Errorf("redeemed card = %+v", card)
	}

	listed, err := cards.ListByBusiness(biz.ID)
	if err != nil {
		t.Fatalf("ListByBusiness: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("cards = %d, want 1", len(listed))
	}

	missing, err := cards.AddStamp(uuid.New())
	if err != nil {
		t.Fatalf("AddStamp missing: %v", err)
	}
	if missing != nil {
		t.Error("AddStamp on unknown card should return nil")
	}
}
