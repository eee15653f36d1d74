package models

import (
	"reflect"
	"testing"
)

func TestCollectPreservesArgumentOrder(t *testing.T) {
	codes := Collect(
		Labeled{Label("Selic", 11), Label("IPCA", 433)},
		Bare(1),
		Label("PIB", "4380"),
		Bare("ABC123"),
	)

	wantLabels := []string{"Selic", "IPCA", "1", "PIB", "ABC123"}
	if got := codes.Labels(); !reflect.DeepEqual(got, wantLabels) {
		t.Errorf("Labels() = %v, want %v", got, wantLabels)
	}

	if code, ok := codes.Get("IPCA"); !ok || code != "433" {
		t.Errorf("Get(IPCA) = %q, %v", code, ok)
	}
	if code, ok := codes.Get("1"); !ok || code != "1" {
		t.Errorf("Get(1) = %q, %v", code, ok)
	}
}

func TestCollectDuplicateLabelOverwrites(t *testing.T) {
	codes := Collect(
		Label("Selic", 11),
		Bare(433),
		Label("Selic", 1178),
	)

	want := Codes{
		{Label: "Selic", Code: "1178"},
		{Label: "433", Code: "433"},
	}
	if !reflect.DeepEqual(codes, want) {
		t.Errorf("Collect() = %+v, want %+v", codes, want)
	}
}

func TestCollectSkipsNilAndEmptyLabels(t *testing.T) {
	codes := Collect(nil, SeriesCode{Code: "12"}, Labeled{})
	if len(codes) != 1 || codes[0].Label != "12" {
		t.Errorf("Collect() = %+v, want one code labeled 12", codes)
	}
}

func TestParseCodeInputs(t *testing.T) {
	inputs := ParseCodeInputs([]string{"Selic=11", " 433 ", "", "=7", "PRECOS12_IPCA12"})
	codes := Collect(inputs...)

	want := Codes{
		{Label: "Selic", Code: "11"},
		{Label: "433", Code: "433"},
		{Label: "=7", Code: "=7"},
		{Label: "PRECOS12_IPCA12", Code: "PRECOS12_IPCA12"},
	}
	if !reflect.DeepEqual(codes, want) {
		t.Errorf("got %+v, want %+v", codes, want)
	}
}
