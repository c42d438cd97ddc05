/*
Package storefront wires a product catalog, a basket and a two-step
checkout together through an event broker.

# Overview

State (model.AppState) and components (package view) never call each
other. State announces changes with events; components announce user
actions with events; the reactions registered by New connect the two:

	items:changed             -> render catalog cards on the page
	card:select               -> record preview, open preview card in the modal
	add:product               -> add to basket, close modal
	basket:changed            -> re-render basket rows, total and page counter
	order:open                -> open delivery form
	order.<field>:change      -> update order, recompute delivery errors
	order:submit              -> copy basket into order, open contacts form
	contacts.<field>:change   -> update order, recompute contact errors
	contacts:submit           -> submit order, show success screen
	modal:open / modal:close  -> lock / unlock the page

# Basic Usage

	broker := event.NewBroker(event.BrokerConfig{
	    Catalog:     events.Catalog(),
	    StrictNames: true,
	})
	shop, err := storefront.New(storefront.Config{
	    Broker:    broker,
	    Submitter: api,
	})
	if err != nil {
	    log.Fatal(err)
	}
	if err := shop.Start(ctx, products); err != nil {
	    log.Fatal(err)
	}

	// Drive it like a user would:
	shop.SelectProduct(ctx, "mug")
	shop.Buy(ctx)
	shop.Page().OpenBasket(ctx)

# Errors

A failing reaction fails the Emit that triggered it, and the error reaches
the code that drove the action. Submitter failures are the exception: they
are logged and the checkout stays open so the user can retry.
*/
package storefront
