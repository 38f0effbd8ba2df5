package core

import "testing"

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name        string
		rooms       []string
		defaultRoom string
		wantErr     bool
	}{
		{name: "valid", rooms: []string{"general", "support"}, defaultRoom: "general"},
		{name: "empty list", rooms: nil, defaultRoom: "general", wantErr: true},
		{name: "default missing", rooms: []string{"support"}, defaultRoom: "general", wantErr: true},
		{name: "duplicate", rooms: []string{"general", "general"}, defaultRoom: "general", wantErr: true},
		{name: "not normalized", rooms: []string{"General"}, defaultRoom: "General", wantErr: true},
		{name: "empty id", rooms: []string{"general", ""}, defaultRoom: "general", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.rooms, tt.defaultRoom)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRegistry err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistryLookups(t *testing.T) {
	reg := newTestRegistry(t)

	if !reg.Has("support") || reg.Has("lobby") {
		t.Fatal("unexpected membership results")
	}
	if reg.Default() != "general" {
		t.Fatalf("default = %q", reg.Default())
	}

	rooms := reg.Rooms()
	rooms[0] = "mutated"
	if reg.Rooms()[0] != "general" {
		t.Fatal("Rooms must return a copy")
	}

	if room, ok := reg.Resolve(" Random "); !ok || room != "random" {
		t.Fatalf("Resolve = %q, %v", room, ok)
	}
	if _, ok := reg.Resolve("lobby"); ok {
		t.Fatal("unknown room resolved")
	}
}
