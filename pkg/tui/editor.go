package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formtemplate/pkg/engine"
	"github.com/goliatone/go-formtemplate/pkg/export"
	"github.com/goliatone/go-formtemplate/pkg/model"
)

const (
	actionAddPage    = "Add page"
	actionEditPage   = "Edit page"
	actionMovePage   = "Move page"
	actionDeletePage = "Delete page"
	actionPreview    = "Preview JSON"
	actionSave       = "Save"
	actionQuit       = "Quit"

	actionRenamePage  = "Rename page"
	actionAddField    = "Add field"
	actionEditField   = "Edit field"
	actionMoveField   = "Move field"
	actionDeleteField = "Delete field"

	actionLabel    = "Label"
	actionName     = "Name"
	actionType     = "Type"
	actionRequired = "Required"
	actionRegex    = "Regex"
	actionMin      = "Min"
	actionMax      = "Max"
	actionOptions  = "Options"
	actionAccept   = "File types"

	actionAddSlot = "Add slot"
	actionBack    = "Back"
	actionCancel  = "Cancel"
)

var (
	mainMenu = []string{actionAddPage, actionEditPage, actionMovePage, actionDeletePage, actionPreview, actionSave, actionQuit}
	pageMenu = []string{actionRenamePage, actionAddField, actionEditField, actionMoveField, actionDeleteField, actionBack}
)

// Editor is an interactive terminal front end for an engine. Every menu
// action maps to one engine operation; rejected operations are reported and
// the session continues on the unchanged template.
type Editor struct {
	engine *engine.Engine
	driver PromptDriver
	sink   export.Sink
	logger *zap.Logger
	theme  Theme
}

// New builds an editor around e using the survey prompt driver by default.
func New(e *engine.Engine, options ...Option) (*Editor, error) {
	if e == nil {
		return nil, errors.New("tui: engine is required")
	}
	ed := &Editor{
		engine: e,
		driver: newSurveyDriver(),
		logger: zap.NewNop(),
		theme:  Theme{ErrorPrefix: "error: "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(ed)
	}
	return ed, nil
}

// Run drives the main menu until the user quits or a prompt fails.
func (ed *Editor) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	for {
		action, err := ed.choose(ctx, "Template", mainMenu, 0)
		if err != nil {
			return err
		}

		switch mainMenu[action] {
		case actionAddPage:
			ed.engine.AddPage()
		case actionEditPage:
			err = ed.editPage(ctx)
		case actionMovePage:
			err = ed.movePage(ctx)
		case actionDeletePage:
			err = ed.deletePage(ctx)
		case actionPreview:
			err = ed.preview(ctx)
		case actionSave:
			err = ed.save(ctx)
		case actionQuit:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (ed *Editor) editPage(ctx context.Context) error {
	pageIdx, ok, err := ed.choosePage(ctx, "Edit which page?")
	if err != nil || !ok {
		return err
	}

	for {
		tmpl := ed.engine.Template()
		if pageIdx >= len(tmpl.Pages) {
			return nil
		}
		action, err := ed.choose(ctx, tmpl.Pages[pageIdx].Title, pageMenu, 0)
		if err != nil {
			return err
		}

		switch pageMenu[action] {
		case actionRenamePage:
			title, err := ed.driver.Input(ctx, InputConfig{Message: "Title", Default: tmpl.Pages[pageIdx].Title})
			if err != nil {
				return err
			}
			err = ed.report(ctx, ed.engine.UpdatePageTitle(pageIdx, title))
			if err != nil {
				return err
			}
		case actionAddField:
			if err := ed.report(ctx, ed.engine.AddField(pageIdx)); err != nil {
				return err
			}
		case actionEditField:
			fieldIdx, ok, err := ed.chooseField(ctx, pageIdx, "Edit which field?")
			if err != nil {
				return err
			}
			if ok {
				if err := ed.editField(ctx, pageIdx, fieldIdx); err != nil {
					return err
				}
			}
		case actionMoveField:
			if err := ed.moveField(ctx, pageIdx); err != nil {
				return err
			}
		case actionDeleteField:
			fieldIdx, ok, err := ed.chooseField(ctx, pageIdx, "Delete which field?")
			if err != nil {
				return err
			}
			if ok {
				if err := ed.report(ctx, ed.engine.DeleteField(pageIdx, fieldIdx)); err != nil {
					return err
				}
			}
		case actionBack:
			return nil
		}
	}
}

func fieldMenu(ft model.FieldType) []string {
	menu := []string{actionLabel, actionName, actionType, actionRequired}
	switch ft {
	case model.FieldTypeText:
		menu = append(menu, actionRegex)
	case model.FieldTypeNumber:
		menu = append(menu, actionMin, actionMax)
	case model.FieldTypeSelect, model.FieldTypeRadio:
		menu = append(menu, actionOptions)
	case model.FieldTypeFile:
		menu = append(menu, actionAccept)
	}
	return append(menu, actionBack)
}

func (ed *Editor) editField(ctx context.Context, pageIdx, fieldIdx int) error {
	for {
		field, err := ed.engine.Field(pageIdx, fieldIdx)
		if err != nil {
			return ed.report(ctx, err)
		}
		menu := fieldMenu(field.Type)
		title := fmt.Sprintf("Field %d (%s)", fieldIdx+1, field.Type)
		action, err := ed.choose(ctx, title, menu, 0)
		if err != nil {
			return err
		}

		var opErr error
		switch menu[action] {
		case actionLabel:
			value, err := ed.driver.Input(ctx, InputConfig{Message: "Label", Default: field.Label})
			if err != nil {
				return err
			}
			opErr = ed.engine.UpdateField(pageIdx, fieldIdx, model.AttrLabel, value)
		case actionName:
			value, err := ed.driver.Input(ctx, InputConfig{Message: "Name", Default: field.Name})
			if err != nil {
				return err
			}
			opErr = ed.engine.UpdateField(pageIdx, fieldIdx, model.AttrName, value)
		case actionType:
			options := make([]string, len(model.FieldTypes))
			current := 0
			for i, ft := range model.FieldTypes {
				options[i] = string(ft)
				if ft == field.Type {
					current = i
				}
			}
			choice, err := ed.choose(ctx, "Type", options, current)
			if err != nil {
				return err
			}
			opErr = ed.engine.UpdateField(pageIdx, fieldIdx, model.AttrType, model.FieldTypes[choice])
		case actionRequired:
			value, err := ed.driver.Confirm(ctx, ConfirmConfig{Message: "Required?", Default: field.Required})
			if err != nil {
				return err
			}
			opErr = ed.engine.UpdateField(pageIdx, fieldIdx, model.AttrRequired, value)
		case actionRegex:
			value, err := ed.promptRule(ctx, field, model.RuleRegex)
			if err != nil {
				return err
			}
			opErr = ed.engine.UpdateValidation(pageIdx, fieldIdx, model.RuleRegex, value)
		case actionMin:
			value, err := ed.promptRule(ctx, field, model.RuleMin)
			if err != nil {
				return err
			}
			opErr = ed.engine.UpdateValidation(pageIdx, fieldIdx, model.RuleMin, value)
		case actionMax:
			value, err := ed.promptRule(ctx, field, model.RuleMax)
			if err != nil {
				return err
			}
			opErr = ed.engine.UpdateValidation(pageIdx, fieldIdx, model.RuleMax, value)
		case actionOptions:
			if err := ed.editList(ctx, pageIdx, fieldIdx, model.ArrayKeyOptions); err != nil {
				return err
			}
		case actionAccept:
			if err := ed.editList(ctx, pageIdx, fieldIdx, model.ArrayKeyAccept); err != nil {
				return err
			}
		case actionBack:
			return nil
		}
		if err := ed.report(ctx, opErr); err != nil {
			return err
		}
	}
}

// promptRule asks for a validation value. A regex is stored exactly as
// typed, so an empty answer keeps an empty pattern. An empty bound clears
// the rule; other bound input is passed on for the model to normalize.
func (ed *Editor) promptRule(ctx context.Context, field model.Field, key string) (any, error) {
	current := ""
	if field.Validation != nil {
		if value, ok := field.Validation.Rules()[key]; ok {
			current = fmt.Sprint(value)
		}
	}
	help := "Leave empty to clear the rule"
	if key == model.RuleRegex {
		help = "Leave empty to accept any input"
	}
	raw, err := ed.driver.Input(ctx, InputConfig{
		Message: strings.ToUpper(key[:1]) + key[1:],
		Default: current,
		Help:    help,
	})
	if err != nil {
		return nil, err
	}
	if key == model.RuleRegex {
		return raw, nil
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return raw, nil
}

func (ed *Editor) editList(ctx context.Context, pageIdx, fieldIdx int, key model.ArrayKey) error {
	for {
		field, err := ed.engine.Field(pageIdx, fieldIdx)
		if err != nil {
			return ed.report(ctx, err)
		}
		items := field.Array(key)
		menu := make([]string, 0, len(items)+2)
		for i, item := range items {
			if item == "" {
				item = "(empty)"
			}
			menu = append(menu, fmt.Sprintf("%d. %s", i+1, item))
		}
		menu = append(menu, actionAddSlot, actionBack)

		choice, err := ed.choose(ctx, string(key), menu, 0)
		if err != nil {
			return err
		}
		switch {
		case choice < len(items):
			value, err := ed.driver.Input(ctx, InputConfig{Message: fmt.Sprintf("%s %d", key, choice+1), Default: items[choice]})
			if err != nil {
				return err
			}
			if err := ed.report(ctx, ed.engine.UpdateArrayField(pageIdx, fieldIdx, key, choice, value)); err != nil {
				return err
			}
		case menu[choice] == actionAddSlot:
			if err := ed.report(ctx, ed.engine.AddArrayFieldItem(pageIdx, fieldIdx, key)); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (ed *Editor) movePage(ctx context.Context) error {
	source, ok, err := ed.choosePage(ctx, "Move which page?")
	if err != nil || !ok {
		return err
	}
	destination, ok, err := ed.choosePage(ctx, "Move to position of")
	if err != nil || !ok {
		return err
	}
	return ed.report(ctx, ed.engine.Drag(engine.DragResult{
		Scope:       engine.DragScopePage,
		Source:      source,
		Destination: destination,
	}))
}

func (ed *Editor) moveField(ctx context.Context, pageIdx int) error {
	source, ok, err := ed.chooseField(ctx, pageIdx, "Move which field?")
	if err != nil || !ok {
		return err
	}
	destination, ok, err := ed.chooseField(ctx, pageIdx, "Move to position of")
	if err != nil || !ok {
		return err
	}
	return ed.report(ctx, ed.engine.Drag(engine.DragResult{
		Scope:       engine.DragScopeField,
		PageIndex:   pageIdx,
		Source:      source,
		Destination: destination,
	}))
}

func (ed *Editor) deletePage(ctx context.Context) error {
	pageIdx, ok, err := ed.choosePage(ctx, "Delete which page?")
	if err != nil || !ok {
		return err
	}
	return ed.report(ctx, ed.engine.DeletePage(pageIdx))
}

func (ed *Editor) preview(ctx context.Context) error {
	data, err := ed.engine.Serialize()
	if err != nil {
		return ed.report(ctx, err)
	}
	return ed.driver.Info(ctx, string(data))
}

func (ed *Editor) save(ctx context.Context) error {
	if ed.sink == nil {
		return ed.driver.Info(ctx, ed.theme.ErrorPrefix+"no export destination configured")
	}
	if err := ed.sink.Export(ctx, ed.engine.Template()); err != nil {
		return ed.report(ctx, err)
	}
	return ed.driver.Info(ctx, ed.theme.InfoPrefix+"template saved")
}

func (ed *Editor) choosePage(ctx context.Context, message string) (int, bool, error) {
	tmpl := ed.engine.Template()
	if len(tmpl.Pages) == 0 {
		return 0, false, ed.driver.Info(ctx, ed.theme.InfoPrefix+"no pages yet")
	}
	options := make([]string, 0, len(tmpl.Pages)+1)
	for i, page := range tmpl.Pages {
		options = append(options, fmt.Sprintf("%d. %s", i+1, page.Title))
	}
	options = append(options, actionCancel)
	choice, err := ed.choose(ctx, message, options, 0)
	if err != nil {
		return 0, false, err
	}
	return choice, choice < len(tmpl.Pages), nil
}

func (ed *Editor) chooseField(ctx context.Context, pageIdx int, message string) (int, bool, error) {
	tmpl := ed.engine.Template()
	if pageIdx >= len(tmpl.Pages) || len(tmpl.Pages[pageIdx].Fields) == 0 {
		return 0, false, ed.driver.Info(ctx, ed.theme.InfoPrefix+"no fields yet")
	}
	fields := tmpl.Pages[pageIdx].Fields
	options := make([]string, 0, len(fields)+1)
	for i, field := range fields {
		options = append(options, fmt.Sprintf("%d. %s", i+1, fieldCaption(field)))
	}
	options = append(options, actionCancel)
	choice, err := ed.choose(ctx, message, options, 0)
	if err != nil {
		return 0, false, err
	}
	return choice, choice < len(fields), nil
}

func fieldCaption(field model.Field) string {
	switch {
	case field.Label != "":
		return fmt.Sprintf("%s [%s]", field.Label, field.Type)
	case field.Name != "":
		return fmt.Sprintf("%s [%s]", field.Name, field.Type)
	default:
		return fmt.Sprintf("(unnamed) [%s]", field.Type)
	}
}

func (ed *Editor) choose(ctx context.Context, message string, options []string, defaultIdx int) (int, error) {
	choice, err := ed.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      options,
		DefaultIndex: defaultIdx,
		PageSize:     12,
	})
	if err != nil {
		return 0, err
	}
	if choice < 0 || choice >= len(options) {
		return 0, fmt.Errorf("%w: %d of %d", ErrInvalidChoice, choice, len(options))
	}
	return choice, nil
}

// report surfaces an operation error to the user. It only fails when the
// message itself cannot be shown.
func (ed *Editor) report(ctx context.Context, opErr error) error {
	if opErr == nil {
		return nil
	}
	ed.logger.Warn("editor operation rejected", zap.Error(opErr))
	return ed.driver.Info(ctx, ed.theme.ErrorPrefix+opErr.Error())
}
